package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
)

const maxBodyBytes = 1 << 20

var errEmptyBody = errors.New("el cuerpo de la solicitud está vacío")

// bindEnvelope binds the request body to obj. Collaborating modules send
// either an envelope ({"audit": {...}}) or the bare object ({...}); both are
// accepted. An envelope whose content does not fit obj is an error rather
// than a reason to try the flat form.
func bindEnvelope(c *gin.Context, key string, obj interface{}) error {
	var bodyBytes []byte
	if c.Request.Body != nil {
		var err error
		bodyBytes, err = io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
		if err != nil {
			return err
		}
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

	if len(bytes.TrimSpace(bodyBytes)) == 0 {
		return errEmptyBody
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(bodyBytes, &envelope); err == nil {
		if val, ok := envelope[key]; ok {
			return json.Unmarshal(val, obj)
		}
	}

	return json.Unmarshal(bodyBytes, obj)
}
