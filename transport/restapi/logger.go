package restapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/satori/uuid"
	"github.com/segmentio/encoding/json"
	"github.com/yusufsyaifudin/pnscred/pkg/respbuilder"
	"github.com/yusufsyaifudin/pnscred/pkg/tracer"
	"github.com/yusufsyaifudin/pnscred/pnscred"
	"github.com/yusufsyaifudin/ylog"
	"go.uber.org/multierr"
)

const (
	redacted = "[REDACTED]"

	// credentialXMLKey is the request field holding the XML data contract as a string.
	credentialXMLKey = "credential_xml"
)

func toSimpleMap(h http.Header) map[string]string {
	out := map[string]string{}
	for k, v := range h {
		out[k] = strings.Join(v, " ")
	}

	return out
}

// redact masks credential secrets in a decoded json body, both as object keys and as name/value properties.
func redact(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		name, _ := val["name"].(string)
		for k, child := range val {
			switch {
			case pnscred.IsSecretProperty(k):
				val[k] = redacted
			case k == "value" && pnscred.IsSecretProperty(name):
				val[k] = redacted
			case k == credentialXMLKey:
				platform, _ := val["platform"].(string)
				val[k] = redactXML(platform, child)
			default:
				val[k] = redact(child)
			}
		}

		return val

	case []interface{}:
		for i := range val {
			val[i] = redact(val[i])
		}

		return val

	default:
		return v
	}
}

// redactXML replaces the XML data contract with its property list, secrets masked.
// A document that does not decode is not logged at all.
func redactXML(platform string, v interface{}) interface{} {
	doc, ok := v.(string)
	if !ok {
		return redact(v)
	}

	if platform == "" {
		platform = pnscred.PlatformGCM
	}

	cred, err := pnscred.DecodeXML(platform, []byte(doc))
	if err != nil {
		return redacted
	}

	props := make([]map[string]string, 0)
	for _, prop := range cred.Properties() {
		value := prop.Value
		if pnscred.IsSecretProperty(prop.Name) {
			value = redacted
		}

		props = append(props, map[string]string{"name": prop.Name, "value": value})
	}

	return props
}

// decodeForLog returns the body as object when it is json, otherwise as string.
// Non json bodies are logged only by size since they may carry the XML data contract.
func decodeForLog(body []byte) (obj interface{}, str string, err error) {
	if len(body) == 0 {
		return nil, "", nil
	}

	if err = json.Unmarshal(body, &obj); err != nil {
		return nil, fmt.Sprintf("<%d bytes>", len(body)), err
	}

	return redact(obj), "", nil
}

func requestLogger(skipFunc func(r *http.Request) bool, next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if skipFunc(r) {
			next.ServeHTTP(w, r)
			return
		}

		var globalErr error
		t1 := time.Now().UTC()
		ctx := r.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		traceID := uuid.NewV4().String()

		logTraceData, err := ylog.NewTracer(tracer.LogData{
			RemoteAddr: r.RemoteAddr,
			TraceID:    traceID,
		}, ylog.WithTag("tracer"))
		if err != nil {
			globalErr = multierr.Append(globalErr, fmt.Errorf("error prepare log tracer data: %w", err))
		}

		// logger and response tracer share the same trace id
		ctx = ylog.Inject(ctx, logTraceData)
		ctx = respbuilder.Inject(ctx, respbuilder.Tracer{
			RemoteAddr: r.RemoteAddr,
			AppTraceID: traceID,
		})
		r = r.WithContext(ctx)

		reqBody := make([]byte, 0)
		if r.Body != nil {
			reqBody, err = io.ReadAll(r.Body)
			if err != nil {
				globalErr = multierr.Append(globalErr, fmt.Errorf("error read request body: %w", err))
			}

			if _err := r.Body.Close(); _err != nil {
				globalErr = multierr.Append(globalErr, fmt.Errorf("cannot close request body: %w", _err))
			}

			r.Body = io.NopCloser(bytes.NewReader(reqBody))
		}

		reqBodyObj, reqBodyStr, err := decodeForLog(reqBody)
		if err != nil {
			globalErr = multierr.Append(globalErr, fmt.Errorf("request body is not json: %w", err))
		}

		rec := httptest.NewRecorder()
		next.ServeHTTP(rec, r)

		respBody := rec.Body.Bytes()
		for k, v := range rec.Header() {
			w.Header()[k] = v
		}

		w.WriteHeader(rec.Code)
		if _, err = w.Write(respBody); err != nil {
			globalErr = multierr.Append(globalErr, fmt.Errorf("error write response body: %w", err))
		}

		// decode after writing, redact mutates only the decoded copy
		respBodyObj, respBodyStr, err := decodeForLog(respBody)
		if err != nil {
			globalErr = multierr.Append(globalErr, fmt.Errorf("response body is not json: %w", err))
		}

		errStr := ""
		if globalErr != nil {
			errStr = globalErr.Error()
		}

		ylog.Access(ctx, ylog.AccessLogData{
			Path: r.RequestURI,
			Request: ylog.HTTPData{
				Header:     toSimpleMap(r.Header),
				DataObject: reqBodyObj,
				DataString: reqBodyStr,
			},
			Response: ylog.HTTPData{
				Header:     toSimpleMap(rec.Header()),
				DataObject: respBodyObj,
				DataString: respBodyStr,
			},
			Error:       errStr,
			ElapsedTime: time.Since(t1).Milliseconds(),
		})
	}
}
