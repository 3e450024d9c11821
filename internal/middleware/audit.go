package middleware

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/huangang/portfolio/internal/services"
)

const maxAuditBody = 2000

// maxAuditCapture bounds how much of a request body is buffered for the
// audit snippet. The rest streams to the handler untouched.
const maxAuditCapture = 64 << 10

// AuditLog records dashboard write operations (POST/PUT/DELETE) to system_logs.
func AuditLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		if method != http.MethodPost && method != http.MethodPut && method != http.MethodDelete {
			c.Next()
			return
		}

		var bodySnippet string
		if c.Request.Body != nil && !isMultipart(c) {
			bodySnippet = captureBody(c.Request)
			if len(bodySnippet) > maxAuditBody {
				bodySnippet = bodySnippet[:maxAuditBody] + "...[truncated]"
			}
		}

		c.Next()

		userID := GetUserID(c)
		status := c.Writer.Status()
		module, action := parseRouteInfo(c.FullPath(), method)
		message := formatAuditMessage(GetUsername(c), method, c.Request.URL.Path, status)

		var uid *uint
		if userID > 0 {
			uid = &userID
		}

		extra := map[string]interface{}{
			"method": method,
			"path":   c.Request.URL.Path,
			"status": status,
			"body":   bodySnippet,
			"audit":  true,
		}
		entry := services.AuditEntry{
			Module:    module,
			Action:    action,
			Message:   message,
			UserID:    uid,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			Extra:     extra,
		}
		if status >= 400 {
			services.LogWarning(entry)
			return
		}
		services.LogInfo(entry)
	}
}

// captureBody reads a bounded prefix of the request body for auditing and
// re-attaches it in front of the unread remainder.
func captureBody(req *http.Request) string {
	orig := req.Body
	head, _ := io.ReadAll(io.LimitReader(orig, maxAuditCapture))
	req.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), orig), orig}
	return maskSensitiveFields(string(head))
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/")
}

// actionVerbs name non-CRUD endpoints by their last path segment.
var actionVerbs = map[string]string{
	"apply":    "Apply",
	"import":   "Import",
	"export":   "Export",
	"clear":    "Clear",
	"snapshot": "Snapshot",
	"custom":   "Save Custom",
	"modules":  "Toggle Module",
}

// parseRouteInfo derives module and action from a gin route pattern.
// "/api/colleges/:id" + PUT gives ("Colleges", "Update");
// "/api/backup/import" + POST gives ("Backup", "Import").
func parseRouteInfo(fullPath, method string) (module, action string) {
	path := strings.TrimPrefix(fullPath, "/api/")
	parts := strings.Split(path, "/")

	module = parts[0]
	if module == "" {
		module = "unknown"
	}
	module = titleCase(strings.ReplaceAll(module, "-", " "))

	for i := len(parts) - 1; i > 0; i-- {
		if strings.HasPrefix(parts[i], ":") {
			continue
		}
		if verb, ok := actionVerbs[parts[i]]; ok {
			return module, verb
		}
		break
	}

	switch method {
	case http.MethodPost:
		action = "Create"
	case http.MethodPut:
		action = "Update"
	case http.MethodDelete:
		action = "Delete"
	default:
		action = method
	}
	return module, action
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func formatAuditMessage(username, method, path string, status int) string {
	var b strings.Builder
	b.WriteString("[Audit] ")
	b.WriteString(username)
	b.WriteString(" ")
	b.WriteString(method)
	b.WriteString(" ")
	b.WriteString(path)
	b.WriteString(" → ")
	if status >= 200 && status < 300 {
		b.WriteString("OK")
	} else {
		b.WriteString("Failed")
	}
	return b.String()
}

// maskSensitiveFields hides credential values and inline logo data.
func maskSensitiveFields(body string) string {
	for _, key := range []string{"password", "token", "secret", "logo"} {
		body = maskJSONValue(body, key)
	}
	return body
}

// maskJSONValue replaces every quoted string value of key with ***.
// Key matching is ASCII case-insensitive on the raw bytes so offsets
// always refer to body itself. A value cut off by the capture limit is
// masked up to the end of the body.
func maskJSONValue(body, key string) string {
	needle := "\"" + key + "\""
	from := 0
	for {
		idx := indexFold(body, needle, from)
		if idx == -1 {
			return body
		}

		rest := body[idx+len(needle):]
		colon := strings.Index(rest, ":")
		if colon == -1 || strings.TrimSpace(rest[:colon]) != "" {
			from = idx + len(needle)
			continue
		}
		valueStart := idx + len(needle) + colon + 1
		for valueStart < len(body) && (body[valueStart] == ' ' || body[valueStart] == '\t') {
			valueStart++
		}
		if valueStart >= len(body) || body[valueStart] != '"' {
			from = idx + len(needle)
			continue
		}
		end := closingQuote(body, valueStart+1)
		if end == -1 {
			return body[:valueStart+1] + "***"
		}
		body = body[:valueStart+1] + "***" + body[end:]
		from = valueStart + 5
	}
}

// indexFold finds an ASCII needle in s starting at from, ignoring case.
func indexFold(s, needle string, from int) int {
	for i := from; i+len(needle) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}

// closingQuote finds the quote ending a JSON string starting at i.
func closingQuote(s string, i int) int {
	for ; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}
