package server

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// DefineHandler answers definition requests.
type DefineHandler struct {
	definer Definer
	md      goldmark.Markdown
	policy  *bluemonday.Policy
}

// NewDefineHandler creates a DefineHandler.
func NewDefineHandler(definer Definer) *DefineHandler {
	return &DefineHandler{
		definer: definer,
		md:      goldmark.New(),
		policy:  bluemonday.UGCPolicy(),
	}
}

// ServeHTTP handles GET /define?word=&context=. The answer is rendered from
// Markdown and sanitized before it is returned as an HTML fragment. A
// missing word is a 400, a failed definition a 502.
func (h *DefineHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := LoggerFromContext(ctx)

	q := r.URL.Query()
	word := strings.TrimSpace(q.Get("word"))
	passage := q.Get("context")
	if word == "" {
		logger.WarnContext(ctx, "define request without word")
		http.Error(w, "missing word", http.StatusBadRequest)
		return
	}

	start := time.Now()
	answer, err := h.definer.Define(ctx, word, passage)
	if err != nil {
		logger.ErrorContext(ctx, "definition failed", "word", word, "error", err)
		http.Error(w, "definition failed", http.StatusBadGateway)
		return
	}

	var buf bytes.Buffer
	if err := h.md.Convert([]byte(answer), &buf); err != nil {
		logger.ErrorContext(ctx, "failed to render definition", "word", word, "error", err)
		http.Error(w, "definition failed", http.StatusBadGateway)
		return
	}
	body := h.policy.SanitizeBytes(buf.Bytes())
	logger.InfoContext(ctx, "defined word", "word", word, "duration", time.Since(start))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
