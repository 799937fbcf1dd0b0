package handler

import (
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/14ChannelBBS/Qua/internal/domain"
	internal_errors "github.com/14ChannelBBS/Qua/internal/errors"
	"github.com/14ChannelBBS/Qua/internal/legacy"
	"github.com/14ChannelBBS/Qua/internal/logger"
	"github.com/14ChannelBBS/Qua/internal/service"
)

func (h *Handler) writeLegacy(w http.ResponseWriter, contentType, body string) {
	w.Header().Set("Content-Type", contentType)
	if _, err := w.Write(legacy.Encode(body, h.policy)); err != nil {
		logger.Log.Debug("failed to write legacy response", "error", err)
	}
}

func (h *Handler) Bbsmenu(w http.ResponseWriter, r *http.Request) {
	boards, err := h.board.Boards()
	if err != nil {
		writeError(w, err)
		return
	}

	var b strings.Builder
	b.WriteString("<html><head><title>BBS MENU</title></head><body>\n")
	b.WriteString("<b>Qua</b><br><br>【板一覧】<br>\n")
	for _, board := range boards {
		fmt.Fprintf(&b, `<a href="/%s/">%s</a><br>`+"\n", board.Id, board.Name)
	}
	b.WriteString("</body></html>")
	h.writeLegacy(w, legacy.ContentTypeHTML, b.String())
}

func (h *Handler) BoardSettings(w http.ResponseWriter, r *http.Request) {
	board, err := h.board.Get(mux.Vars(r)["board"])
	if err != nil {
		writeError(w, err)
		return
	}
	h.writeLegacy(w, legacy.ContentTypeText, legacy.Settings(&board))
}

func (h *Handler) Subject(w http.ResponseWriter, r *http.Request) {
	threads, err := h.board.AllThreads(mux.Vars(r)["board"])
	if err != nil {
		writeError(w, err)
		return
	}
	h.writeLegacy(w, legacy.ContentTypeText, legacy.Subject(threads))
}

func (h *Handler) Dat(w http.ResponseWriter, r *http.Request) {
	board, key, err := threadVars(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	thread, err := h.board.Thread(board, key)
	if err != nil {
		writeError(w, err)
		return
	}
	responses, err := h.board.Responses(board, key)
	if err != nil {
		writeError(w, err)
		return
	}

	rendered := h.post.RenderResponses(&thread, responses, domain.DeviceMonazilla)
	h.writeLegacy(w, legacy.ContentTypeText, legacy.Dat(&thread, rendered))
}

// bbsCgiForm is one decoded bbs.cgi submission. Fields arrive percent-encoded
// in the legacy charset and HTML-escaped on top.
type bbsCgiForm struct {
	bbs     string
	key     string
	subject string
	from    string
	mail    string
	message string
}

func parseBbsCgiForm(raw string) bbsCgiForm {
	fields := map[string]string{}
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		fields[k] = html.UnescapeString(decodeLegacyField(v))
	}
	return bbsCgiForm{
		bbs:     fields["bbs"],
		key:     fields["key"],
		subject: fields["subject"],
		from:    fields["FROM"],
		mail:    fields["mail"],
		message: fields["MESSAGE"],
	}
}

// decodeLegacyField percent-decodes into raw bytes first; the bytes are
// legacy-charset, so url.QueryUnescape alone would mangle them.
func decodeLegacyField(v string) string {
	v = strings.ReplaceAll(v, "+", " ")
	b := make([]byte, 0, len(v))
	for i := 0; i < len(v); {
		if v[i] == '%' && i+2 < len(v) {
			if n, err := strconv.ParseUint(v[i+1:i+3], 16, 8); err == nil {
				b = append(b, byte(n))
				i += 3
				continue
			}
		}
		b = append(b, v[i])
		i++
	}
	return legacy.Decode(b)
}

func (h *Handler) BbsCgi(w http.ResponseWriter, r *http.Request) {
	var raw string
	if r.Method == http.MethodPost {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}
		raw = string(body)
	} else {
		raw = r.URL.RawQuery
	}
	form := parseBbsCgiForm(raw)

	ip, err := getIP(r)
	if err != nil {
		writeError(w, err)
		return
	}

	newThread := form.key == "" && form.subject != ""
	newResponse := form.key != "" && form.subject == ""
	if !newThread && !newResponse {
		h.bbsCgiError(w, r, &form, ip, "フォーム情報が正しく読めないです。")
		return
	}

	cookies := cookieMap(r)
	if newThread {
		_, err = h.post.CreateThread(r.Context(), domain.ThreadCreationData{
			Board:         form.bbs,
			Title:         form.subject,
			Name:          form.from,
			Command:       form.mail,
			Content:       form.message,
			Cookies:       cookies,
			IpAddress:     ip,
			FromMonazilla: true,
		})
	} else {
		key, keyErr := strconv.ParseInt(form.key, 10, 64)
		if keyErr != nil {
			h.bbsCgiError(w, r, &form, ip, "フォーム情報が正しく読めないです。")
			return
		}
		_, err = h.post.CreateResponse(r.Context(), domain.ResponseCreationData{
			Board:         form.bbs,
			ThreadKey:     key,
			Name:          form.from,
			Command:       form.mail,
			Content:       form.message,
			Cookies:       cookies,
			IpAddress:     ip,
			FromMonazilla: true,
		})
	}
	if err != nil && !errors.Is(err, service.ErrPostedButNoContent) {
		h.bbsCgiError(w, r, &form, ip, bbsCgiMessage(r, err))
		return
	}

	h.setPostCookies(w, &form, cookies)
	h.writeLegacy(w, legacy.ContentTypeHTML,
		"<html><head><title>書きこみました。</title></head><body>\n"+
			"書きこみました。<br><br>画面を切り替えるまでしばらくお待ち下さい。\n"+
			"</body></html>")
}

// setPostCookies refreshes the verification token and the last-used
// name/mail. Submitting an empty field deletes its cookie.
func (h *Handler) setPostCookies(w http.ResponseWriter, form *bbsCgiForm, cookies map[string]string) {
	token := cookies[service.TokenCookie]
	if token == "" {
		if i := strings.LastIndex(form.mail, "#"); i >= 0 {
			token = form.mail[i+1:]
		}
	}
	if token != "" {
		http.SetCookie(w, &http.Cookie{Name: service.TokenCookie, Value: token, Path: "/", MaxAge: tokenCookieMaxAge})
	}

	for _, c := range []struct{ name, value string }{
		{"NAME", form.from},
		{"MAIL", form.mail},
	} {
		if c.value == "" {
			http.SetCookie(w, &http.Cookie{Name: c.name, Path: "/", MaxAge: -1})
			continue
		}
		http.SetCookie(w, &http.Cookie{Name: c.name, Value: url.QueryEscape(c.value), Path: "/", MaxAge: tokenCookieMaxAge})
	}
}

func bbsCgiMessage(r *http.Request, err error) string {
	var (
		notFound  *internal_errors.NotFound
		verif     *internal_errors.VerificationRequired
		tooShort  *internal_errors.ContentTooShort
		tooLong   *internal_errors.ContentTooLong
		rateLimit *internal_errors.PostRateLimit
		backend   *internal_errors.BackendError
	)
	switch {
	case errors.As(err, &verif):
		base := requestBase(r)
		return fmt.Sprintf(`あなたは認証していません。 <a href="%s/auth">%s/auth</a> から認証してください。`, base, base)
	case errors.As(err, &notFound):
		return "板情報またはスレッド情報が壊れています！"
	case errors.As(err, &tooLong):
		return fmt.Sprintf("%sが長すぎます。%d文字以内に収めてください。", tooLong.Field, tooLong.Max)
	case errors.As(err, &tooShort):
		return fmt.Sprintf("%sが短すぎます。%d文字以上にしてください。", tooShort.Field, tooShort.Min)
	case errors.As(err, &rateLimit):
		return fmt.Sprintf("落ち着いて投稿してください。投稿可能になるまで残り%d秒です。", rateLimit.Remaining)
	case errors.As(err, &backend):
		return backend.Message
	default:
		logger.Log.Error("bbs.cgi post failed", "error", err)
		return fmt.Sprintf("内部エラーです: %v", err)
	}
}

func requestBase(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func (h *Handler) bbsCgiError(w http.ResponseWriter, r *http.Request, form *bbsCgiForm, ip, message string) {
	var b strings.Builder
	b.WriteString("<html><head><title>ＥＲＲＯＲ！</title></head><body>\n")
	b.WriteString("<h1>ＥＲＲＯＲ！</h1>\n")
	fmt.Fprintf(&b, "%s<br><br>\n<hr>\n", message)
	fmt.Fprintf(&b, "ホスト: %s<br>\n", ip)
	fmt.Fprintf(&b, "BBS: %s / KEY: %s<br>\n", form.bbs, form.key)
	fmt.Fprintf(&b, "名前: %s<br>\nメール: %s<br>\n", form.from, form.mail)
	fmt.Fprintf(&b, "本文: %s<br>\n", form.message)
	b.WriteString("<hr>\nQua\n</body></html>")
	h.writeLegacy(w, legacy.ContentTypeHTML, b.String())
}
