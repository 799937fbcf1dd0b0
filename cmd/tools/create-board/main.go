package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/14ChannelBBS/Qua/internal/config"
	"github.com/14ChannelBBS/Qua/internal/domain"
	"github.com/14ChannelBBS/Qua/internal/storage/pg"
)

func prompt(in *bufio.Reader, label string) string {
	fmt.Print(label)
	line, err := in.ReadString('\n')
	if err != nil {
		log.Fatal(err)
	}
	return strings.TrimSpace(line)
}

func main() {
	log.SetFlags(log.Lshortfile)

	var configFolder string
	flag.StringVar(&configFolder, "config_folder", "config", "path to folder with configs")
	flag.Parse()
	cfg := config.MustLoad(configFolder)

	storage, err := pg.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer storage.Cleanup()

	in := bufio.NewReader(os.Stdin)
	board := domain.Board{
		Id:          prompt(in, "板のID: "),
		Name:        prompt(in, "板の名前: "),
		Description: prompt(in, "板の説明: "),
		AnonName:    prompt(in, "名無し名: "),
	}
	if board.AnonName == "" {
		board.AnonName = "名無しさん@14ちゃんねる！"
	}

	if err := storage.CreateBoard(board); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("created board %s\n", board.Id)
}
