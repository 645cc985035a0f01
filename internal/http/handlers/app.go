package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Adel-MESRATI/Nexus-AI/internal/domain"
	"github.com/Adel-MESRATI/Nexus-AI/internal/infra"
	"github.com/Adel-MESRATI/Nexus-AI/internal/middleware"
	"github.com/Adel-MESRATI/Nexus-AI/internal/providers/image"
	"github.com/Adel-MESRATI/Nexus-AI/internal/providers/prompt"
)

// maxBodyBytes bounds request payloads; prompts are short text.
const maxBodyBytes = 64 << 10

type App struct {
	Generator image.Generator
	Enhancer  prompt.Enhancer
	Logger    infra.Logger
}

func NewApp(generator image.Generator, enhancer prompt.Enhancer, logger infra.Logger) *App {
	return &App{Generator: generator, Enhancer: enhancer, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, msg string) {
	a.json(w, code, domain.ErrorResponse{Error: msg})
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

// decode reads a JSON body into v. Unknown fields are ignored.
func (a *App) decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}
