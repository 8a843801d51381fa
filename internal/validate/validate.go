package validate

import (
	"errors"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// ErrNotObject is returned by Structure when the payload is absent or
// not a keyed structure.
var ErrNotObject = errors.New("invalid response: payload is not an object")

// Structure is the hard precondition: the payload must be a JSON
// object. Everything beyond that is advisory, see Audit.
func Structure(payload []byte) error {
	if len(payload) == 0 {
		return ErrNotObject
	}
	parsed := gjson.ParseBytes(payload)
	if !parsed.IsObject() {
		return ErrNotObject
	}
	return nil
}

// Audit checks field completeness and emits warnings for anything
// missing. It never fails: the upstream API legitimately omits fields
// for in-progress sessions and the caller must degrade gracefully.
func Audit(logger *zap.Logger, payload []byte) {
	logger = logger.Named("validate")

	for _, field := range []string{"session_info", "user_info", "conversations"} {
		if !gjson.GetBytes(payload, field).Exists() {
			logger.Warn("missing expected field", zap.String("field", field))
		}
	}

	if sessionInfo := gjson.GetBytes(payload, "session_info"); sessionInfo.Exists() {
		for _, field := range []string{"id", "status"} {
			if !sessionInfo.Get(field).Exists() {
				logger.Warn("missing session_info field", zap.String("field", field))
			}
		}
	}

	conversations := gjson.GetBytes(payload, "conversations")
	if conversations.IsArray() {
		conversations.ForEach(func(index, conv gjson.Result) bool {
			for _, field := range []string{"question_text", "transcript", "ielts_scores"} {
				if !conv.Get(field).Exists() {
					logger.Warn("incomplete conversation entry",
						zap.Int64("index", index.Int()),
						zap.String("field", field))
				}
			}
			return true
		})
	}
}
