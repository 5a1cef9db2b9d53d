package main

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/openbracket/madpool/internal/bracket"
	"github.com/openbracket/madpool/internal/httputil"
	"github.com/openbracket/madpool/internal/middleware"
	"github.com/openbracket/madpool/internal/pool"
	"github.com/openbracket/madpool/internal/service"
	"github.com/openbracket/madpool/internal/store"
	"github.com/openbracket/madpool/internal/token"
	"github.com/openbracket/madpool/internal/utils"
)

func newRouter(sessionManager *scs.SessionManager, operatorKey string, games *service.GameService, pools *service.PoolService, settlement *service.SettlementService) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(sessionManager.LoadAndSave)

	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(v)
	}

	writeError := func(w http.ResponseWriter, err error) {
		switch {
		case errors.Is(err, store.ErrTournamentNotFound),
			errors.Is(err, pool.ErrPoolNotFound),
			errors.Is(err, pool.ErrEntryNotFound),
			errors.Is(err, bracket.ErrMatchNotFound):
			httputil.NotFound(w, err.Error(), err)
		case errors.Is(err, bracket.ErrAlreadyDecided),
			errors.Is(err, bracket.ErrAlreadyInitialized),
			errors.Is(err, bracket.ErrBetsClosed),
			errors.Is(err, bracket.ErrRoundNotOpen),
			errors.Is(err, bracket.ErrRoundNotComplete),
			errors.Is(err, bracket.ErrFirstFourPending),
			errors.Is(err, bracket.ErrTournamentNotComplete),
			errors.Is(err, pool.ErrNameExists),
			errors.Is(err, pool.ErrYearHasEntries):
			httputil.Conflict(w, err.Error(), err)
		case errors.Is(err, pool.ErrUnauthorized):
			httputil.Unauthorized(w, err.Error())
		case errors.Is(err, pool.ErrPinMismatch),
			errors.Is(err, pool.ErrPinRequired),
			errors.Is(err, bracket.ErrInvalidPrediction),
			errors.Is(err, token.ErrInsufficientBalance),
			errors.Is(err, token.ErrInsufficientAllowance):
			httputil.BadRequest(w, err.Error(), err)
		default:
			httputil.InternalServerError(w, "request failed", err)
		}
	}

	yearParam := func(r *http.Request) (int, error) {
		return strconv.Atoi(chi.URLParam(r, "year"))
	}

	r.Post("/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Key string `json:"key"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			httputil.BadRequest(w, "Invalid request body", err)
			return
		}
		if operatorKey == "" || subtle.ConstantTimeCompare([]byte(body.Key), []byte(operatorKey)) != 1 {
			httputil.Unauthorized(w, "invalid operator key")
			return
		}
		sessionManager.Put(r.Context(), "operator", true)
		w.WriteHeader(http.StatusNoContent)
	})

	r.Post("/logout", func(w http.ResponseWriter, r *http.Request) {
		sessionManager.Destroy(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	r.Get("/tournaments/{year}", func(w http.ResponseWriter, r *http.Request) {
		year, err := yearParam(r)
		if err != nil {
			httputil.BadRequest(w, "Invalid year", err)
			return
		}
		t, err := games.GetTournament(r.Context(), year)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, t)
	})

	r.Get("/pools/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			httputil.BadRequest(w, "Invalid pool ID", err)
			return
		}
		p, err := pools.GetPool(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"id":      p.ID,
			"address": p.Address,
			"kind":    p.Kind,
			"name":    p.Name,
			"year":    p.Year,
		})
	})

	r.Get("/pools/{id}/entries/{token}", func(w http.ResponseWriter, r *http.Request) {
		poolID, err1 := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		tokenID, err2 := strconv.ParseInt(chi.URLParam(r, "token"), 10, 64)
		if err1 != nil || err2 != nil {
			httputil.BadRequest(w, "Invalid pool or token ID", nil)
			return
		}
		entry, err := pools.GetEntry(r.Context(), poolID, tokenID)
		if err != nil {
			writeError(w, err)
			return
		}
		results, points, err := pools.BetValidator(r.Context(), poolID, tokenID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"pool_id":         entry.PoolID,
			"token_id":        entry.TokenID,
			"bettor":          entry.Bettor,
			"year":            entry.Year,
			"prediction":      entry.Prediction,
			"results":         results[:],
			"points":          points,
			"settled_points":  utils.OrZero(entry.Points),
			"prize_claimable": entry.Unclaimed(),
			"prize_claimed":   entry.PrizeClaimed,
			"burned":          entry.Burned,
		})
	})

	r.Post("/pools", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Kind string `json:"kind"`
			Name string `json:"name"`
			PIN  string `json:"pin"`
			Year int    `json:"year"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			httputil.BadRequest(w, "Invalid request body", err)
			return
		}
		operator := sessionManager.GetBool(r.Context(), "operator")
		p, err := pools.CreatePool(r.Context(), pool.Kind(body.Kind), body.Name, body.PIN, body.Year, operator)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"id": p.ID, "address": p.Address})
	})

	r.Post("/pools/{id}/entries", func(w http.ResponseWriter, r *http.Request) {
		poolID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			httputil.BadRequest(w, "Invalid pool ID", err)
			return
		}
		var body struct {
			Year   int       `json:"year"`
			Bettor uuid.UUID `json:"bettor"`
			Picks  []byte    `json:"picks"`
			PIN    string    `json:"pin"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			httputil.BadRequest(w, "Invalid request body", err)
			return
		}
		placed, err := pools.PlaceBet(r.Context(), poolID, body.Year, body.Picks, body.PIN, body.Bettor)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, placed)
	})

	r.Post("/pools/{id}/entries/{token}/claim", func(w http.ResponseWriter, r *http.Request) {
		poolID, err1 := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		tokenID, err2 := strconv.ParseInt(chi.URLParam(r, "token"), 10, 64)
		if err1 != nil || err2 != nil {
			httputil.BadRequest(w, "Invalid pool or token ID", nil)
			return
		}
		amount, err := settlement.Claim(r.Context(), poolID, tokenID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"claimed": amount})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireOperator(sessionManager))

		r.Post("/tournaments/{year}", func(w http.ResponseWriter, r *http.Request) {
			year, err := yearParam(r)
			if err != nil {
				httputil.BadRequest(w, "Invalid year", err)
				return
			}
			if r.URL.Query().Get("reset") == "1" {
				err = games.ResetGame(r.Context(), year)
			} else {
				err = games.CreateGame(r.Context(), year)
			}
			if err != nil {
				writeError(w, err)
				return
			}
			w.WriteHeader(http.StatusCreated)
		})

		r.Post("/tournaments/{year}/close-bets", func(w http.ResponseWriter, r *http.Request) {
			year, err := yearParam(r)
			if err != nil {
				httputil.BadRequest(w, "Invalid year", err)
				return
			}
			if err := games.CloseBets(r.Context(), year); err != nil {
				writeError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})

		r.Post("/settlement/{year}/{op}", func(w http.ResponseWriter, r *http.Request) {
			year, err := yearParam(r)
			if err != nil {
				httputil.BadRequest(w, "Invalid year", err)
				return
			}
			var result service.IterationResult
			switch chi.URLParam(r, "op") {
			case "score":
				result, err = settlement.IterateYearTokens(r.Context(), year)
			case "burn":
				result, err = settlement.IterateBurnYearTokens(r.Context(), year)
			case "dismiss":
				result, err = settlement.IterateDismissYear(r.Context(), year)
			default:
				httputil.NotFound(w, "unknown settlement operation", nil)
				return
			}
			if err != nil {
				writeError(w, err)
				return
			}
			status := "continue"
			if result == service.IterationFinished {
				status = "finished"
			}
			writeJSON(w, http.StatusOK, map[string]string{"result": status})
		})
	})

	return r
}
