package telemock

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/maxbolgarin/contem"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/servex/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTP surface. The emulator answers on the real Bot API path layout,
// /bot<TOKEN>/<method>, so pointing any bot framework's base URL at it is
// the whole integration. The token is accepted but never checked.

const (
	apiReadTimeout = 35 * time.Second
	apiIdleTimeout = 120 * time.Second

	maxMultipartMemory = 1 << 20
)

// apiServer wraps the servex listener serving the bot API routes.
type apiServer struct {
	srv *servex.Server
	log Logger
}

func startAPIServer(ctx contem.Context, s *Server) (*apiServer, error) {
	opts := []servex.Option{
		servex.WithNoRequestLog(),
		servex.WithReadTimeout(apiReadTimeout),
		servex.WithIdleTimeout(apiIdleTimeout),
		servex.WithHealthEndpoint(),
		servex.WithLogger(s.log),
	}

	srv, err := servex.NewServer(opts...)
	if err != nil {
		return nil, errm.Wrap(err, "create servex server")
	}

	srv.POST("/bot{token}/{method}", s.handleAPI)
	srv.GET("/bot{token}/{method}", s.handleAPI)

	if !s.metrics.disabled {
		srv.GET("/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}).ServeHTTP)
	}

	if err := srv.StartHTTP(s.cfg.Listen); err != nil {
		return nil, errm.Wrap(err, "start http")
	}
	ctx.Add(srv.Shutdown)

	return &apiServer{srv: srv, log: s.log}, nil
}

// Handler exposes the bot API surface as a plain http.Handler, handy for
// httptest servers and custom listeners.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.handleAPI)
}

func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	method, ok := parseMethodPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	data := parseRequestData(r)
	s.metrics.incAPIRequest(method)
	s.log.Debug("api call", "method", method)

	s.writeResponse(w, s.callMethod(method, data))
}

// parseMethodPath extracts the method name from /bot<token>/<method>.
// The token part may be empty or arbitrary; authentication is out of scope
// for an emulator.
func parseMethodPath(path string) (string, bool) {
	path = strings.TrimPrefix(path, "/")
	if !strings.HasPrefix(path, "bot") {
		return "", false
	}
	rest := path[len("bot"):]

	i := strings.IndexByte(rest, '/')
	if i < 0 || i == len(rest)-1 {
		return "", false
	}
	method := rest[i+1:]
	if strings.ContainsRune(method, '/') {
		return "", false
	}
	return method, true
}

// parseRequestData reads request parameters from wherever the client put
// them: JSON body, urlencoded or multipart form, query string. Frameworks
// differ here, so the parse is permissive and a garbage body simply yields
// no parameters.
func parseRequestData(r *http.Request) map[string]any {
	data := make(map[string]any)

	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			data[k] = v[0]
		}
	}

	body, err := io.ReadAll(r.Body)
	if err != nil || len(body) == 0 {
		return data
	}

	ct := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(ct, "application/json") || bytes.HasPrefix(bytes.TrimSpace(body), []byte("{")):
		var m map[string]any
		if json.Unmarshal(body, &m) == nil {
			for k, v := range m {
				data[k] = v
			}
		}

	case strings.HasPrefix(ct, "multipart/form-data"):
		r.Body = io.NopCloser(bytes.NewReader(body))
		if r.ParseMultipartForm(maxMultipartMemory) == nil {
			for k, v := range r.MultipartForm.Value {
				if len(v) > 0 {
					data[k] = v[0]
				}
			}
		}

	default:
		if vals, err := url.ParseQuery(string(body)); err == nil {
			for k, v := range vals {
				if len(v) > 0 {
					data[k] = v[0]
				}
			}
		}
	}

	return data
}

// callMethod dispatches one simulated API method. Methods the emulator
// does not model are acknowledged with a bare success so bot cleanup paths
// (setMyCommands, sendChatAction and friends) never fail a test.
func (s *Server) callMethod(method string, data map[string]any) apiResponse {
	switch method {
	case "getMe":
		return resultOf(s.GetMe())

	case "getUpdates":
		updates := s.GetUpdates(
			asInt64(data["offset"]),
			asInt(data["limit"]),
			time.Duration(asInt(data["timeout"]))*time.Second,
		)
		if updates == nil {
			updates = []Update{}
		}
		return resultOf(updates)

	case "sendMessage":
		return resultOf(s.SendMessage(asInt64(data["chat_id"]), asString(data["text"]), asRawJSON(data["reply_markup"])))

	case "sendPhoto":
		return resultOf(s.SendPhoto(asInt64(data["chat_id"]), asString(data["caption"])))

	case "sendVideo":
		return resultOf(s.SendVideo(asInt64(data["chat_id"]), asString(data["caption"])))

	case "sendAudio":
		return resultOf(s.SendAudio(asInt64(data["chat_id"]), asString(data["caption"])))

	case "sendVoice":
		return resultOf(s.SendVoice(asInt64(data["chat_id"])))

	case "sendSticker":
		return resultOf(s.SendSticker(asInt64(data["chat_id"])))

	case "sendDocument":
		return resultOf(s.SendDocument(asInt64(data["chat_id"]), asString(data["caption"])))

	case "sendLocation":
		return resultOf(s.SendLocation(asInt64(data["chat_id"]), asFloat(data["latitude"]), asFloat(data["longitude"])))

	case "sendPoll":
		return resultOf(s.SendPoll(asInt64(data["chat_id"]), asString(data["question"]), asStringSlice(data["options"])))

	case "editMessageText":
		return resultOf(s.EditMessageText(asInt64(data["message_id"]), asInt64(data["chat_id"]), asString(data["text"])))

	case "editMessageReplyMarkup":
		return resultOf(s.EditMessageReplyMarkup(asInt64(data["message_id"]), asInt64(data["chat_id"])))

	case "setWebhook":
		return apiResponse{OK: true, Result: true, Description: s.SetWebhook(asString(data["url"]))}

	case "deleteWebhook":
		return apiResponse{OK: true, Result: true, Description: s.DeleteWebhook()}

	case "getWebhookInfo":
		return resultOf(s.GetWebhookInfo())

	case "getChat":
		return resultOf(s.GetChat())

	case "getChatMember":
		return resultOf(s.GetChatMember(asInt64(data["user_id"])))

	case "answerInlineQuery":
		s.CacheInlineResults(asString(data["inline_query_id"]), asAnySlice(data["results"]))
		return resultOf(true)

	default:
		return resultOf(true)
	}
}

func resultOf(result any) apiResponse {
	return apiResponse{OK: true, Result: result}
}

func (s *Server) writeResponse(w http.ResponseWriter, resp apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Warn("cannot write api response", "error", err)
	}
}
