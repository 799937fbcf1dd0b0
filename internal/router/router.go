package router

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/14ChannelBBS/Qua/internal/handler"
)

// New wires every route. The websocket endpoint stays outside the middleware
// chain: compression wrappers hide the http.Hijacker the upgrade needs.
func New(h *handler.Handler) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/ws", h.Websocket).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	web := r.NewRoute().Subrouter()
	web.Use(metricsMiddleware)
	web.Use(handlers.CompressHandler)
	web.Use(handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	))

	api := web.PathPrefix("/api").Subrouter()
	api.HandleFunc("/boards", h.GetBoards).Methods(http.MethodGet)
	api.HandleFunc("/boards/{board}", h.GetBoard).Methods(http.MethodGet)
	api.HandleFunc("/boards/{board}/threads", h.GetThreads).Methods(http.MethodGet)
	api.HandleFunc("/boards/{board}/threads", h.CreateThread).Methods(http.MethodPost)
	api.HandleFunc("/boards/{board}/threads/{thread}", h.GetThread).Methods(http.MethodGet)
	api.HandleFunc("/boards/{board}/threads/{thread}/responses", h.GetResponses).Methods(http.MethodGet)
	api.HandleFunc("/boards/{board}/threads/{thread}/responses", h.CreateResponse).Methods(http.MethodPost)
	api.HandleFunc("/verification", h.Verification).Methods(http.MethodPost)

	// legacy reader surface
	web.HandleFunc("/bbsmenu.html", h.Bbsmenu).Methods(http.MethodGet)
	web.HandleFunc("/test/bbs.cgi", h.BbsCgi).Methods(http.MethodGet, http.MethodPost)
	web.HandleFunc("/{board}/SETTING.TXT", h.BoardSettings).Methods(http.MethodGet)
	web.HandleFunc("/{board}/subject.txt", h.Subject).Methods(http.MethodGet)
	web.HandleFunc("/{board}/dat/{thread:[0-9]+}.dat", h.Dat).Methods(http.MethodGet)

	return r
}
