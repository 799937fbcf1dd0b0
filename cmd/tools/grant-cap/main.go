package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/14ChannelBBS/Qua/internal/config"
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
	token := prompt(in, "トークン: ")
	if _, err := storage.GetIdentityByToken(token); err != nil {
		log.Fatal(err)
	}

	cap := prompt(in, "キャップ名: ")
	capColor := prompt(in, "キャップ色 (何も入力しないとスキップ): ")

	if err := storage.GrantCap(token, cap, capColor); err != nil {
		log.Fatal(err)
	}
	fmt.Println("cap granted")
}
