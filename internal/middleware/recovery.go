package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	apperrors "github.com/adeolu/swiftride/internal/errors"
	"github.com/adeolu/swiftride/pkg/utils"
)

// Recovery converts panics into a 500 response instead of dropping the
// connection.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("panic recovered: %v\n%s", err, debug.Stack())
				utils.Error(w, apperrors.InternalError("an unexpected error occurred"))
			}
		}()

		next.ServeHTTP(w, r)
	})
}
