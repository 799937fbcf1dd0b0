package legacy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/14ChannelBBS/Qua/internal/domain"
)

const datTimeFormat = "2006/01/02 15:04:05.000000"

// Settings renders SETTING.TXT for a board: a KEY=VALUE newline list headed
// by the board identity line.
func Settings(board *domain.Board) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s@Qua\n", board.Id)
	fmt.Fprintf(&b, "BBS_TITLE=%s\n", board.Name)
	fmt.Fprintf(&b, "BBS_TITLE_ORIG=%s\n", board.Name)
	fmt.Fprintf(&b, "BBS_LINE_NUMBER=%d\n", 16)
	fmt.Fprintf(&b, "BBS_NONAME_NAME=%s\n", board.AnonName)
	fmt.Fprintf(&b, "BBS_SUBJECT_COUNT=%d\n", 192)
	fmt.Fprintf(&b, "BBS_NAME_COUNT=%d\n", 128)
	fmt.Fprintf(&b, "BBS_MAIL_COUNT=%d\n", 9192)
	fmt.Fprintf(&b, "BBS_MESSAGE_COUNT=%d\n", 9192)
	return b.String()
}

// Subject renders subject.txt: one line per thread, newest-first by sort key,
// each `{key}.dat<>{title} ({count})` with a trailing newline.
func Subject(threads []domain.Thread) string {
	sorted := make([]domain.Thread, len(threads))
	copy(sorted, threads)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SortKey > sorted[j].SortKey
	})

	var b strings.Builder
	for _, t := range sorted {
		fmt.Fprintf(&b, "%d.dat<>%s (%d)\n", t.Key, t.Title, t.Count)
	}
	return b.String()
}

// Dat renders the per-thread response dump: one fixed-field line per
// response, the thread title riding on the first line only.
func Dat(thread *domain.Thread, responses []domain.Response) string {
	var b strings.Builder
	for i, r := range responses {
		if i > 0 {
			b.WriteByte('\n')
		}
		title := ""
		if i == 0 {
			title = thread.Title
		}
		b.WriteString(DatLine(&r, title))
	}
	return b.String()
}

// DatLine formats a single response as
// `name<>mail<>timestamp ID:shownId<> content <>title`.
func DatLine(r *domain.Response, title string) string {
	name := r.Name
	if cap := r.Attributes.GetString("cap"); cap != "" {
		name += "@" + cap + " ★"
		if color := r.Attributes.GetString("cap_color"); color != "" {
			name = fmt.Sprintf(`<font color="%s">%s</font>`, color, name)
		}
	}

	content := strings.ReplaceAll(r.Content, "\n", " <br> ")
	for _, rc := range r.Reactions.Counts() {
		content += fmt.Sprintf(" %s %d | ", rc.Emoji.Name, rc.Count)
	}

	return fmt.Sprintf("%s<>%s<>%s ID:%s<> %s <>%s",
		name,
		r.Attributes.GetString("email"),
		r.CreatedAt.Format(datTimeFormat),
		r.ShownId,
		content,
		title,
	)
}
