package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/tapglue/multibuy/core"
)

// CounterIncrement bumps the count for the key in the payload.
func CounterIncrement(fn core.CounterIncrementFunc) Handler {
	return counterHandler(fn)
}

// CounterGet returns the count for the key in the payload. The call itself is
// counted, exactly like CounterIncrement.
func CounterGet(fn core.CounterGetFunc) Handler {
	return counterHandler(core.CounterIncrementFunc(fn))
}

func counterHandler(fn core.CounterIncrementFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		p := payloadKey{}

		err := json.NewDecoder(r.Body).Decode(&p)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		count, err := fn(p.Key)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusOK, &payloadCount{Count: count})
	}
}

type payloadCount struct {
	Count uint32 `json:"count"`
}

type payloadKey struct {
	Key string `json:"key"`
}
