// Package apigw builds API Gateway proxy responses with the CORS headers the
// web app expects.
package apigw

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// CORSHeaders returns a fresh copy of the headers every response carries.
func CORSHeaders() map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "*",
	}
}

// ErrorItem is one entry of an {"errors":[...]} body.
type ErrorItem struct {
	Message string `json:"message"`
}

// Errors is the body shape used for validation and upstream failures.
type Errors struct {
	Errors []ErrorItem `json:"errors"`
}

// ErrorBody wraps a single message.
func ErrorBody(message string) Errors {
	return Errors{Errors: []ErrorItem{{Message: message}}}
}

// JSON encodes body and returns a response with status and CORS headers.
// Extra headers override the defaults.
func JSON(status int, body any, extra map[string]string) events.APIGatewayProxyResponse {
	headers := CORSHeaders()
	headers["Content-Type"] = "application/json"
	for k, v := range extra {
		headers[k] = v
	}

	payload, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		payload, _ = json.Marshal("An error occurred: " + err.Error())
	}

	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       string(payload),
	}
}

// Binary returns a base64 encoded response for image payloads.
func Binary(status int, contentType string, data []byte, extra map[string]string) events.APIGatewayProxyResponse {
	headers := CORSHeaders()
	headers["Content-Type"] = contentType
	for k, v := range extra {
		headers[k] = v
	}
	return events.APIGatewayProxyResponse{
		StatusCode:      status,
		Headers:         headers,
		Body:            base64.StdEncoding.EncodeToString(data),
		IsBase64Encoded: true,
	}
}

// CallerSub extracts the Cognito user id from the identity's authentication
// provider string ("...:CognitoSignIn:<sub>"). It returns "" for
// unauthenticated calls.
func CallerSub(req events.APIGatewayProxyRequest) string {
	provider := req.RequestContext.Identity.CognitoAuthenticationProvider
	if provider == "" {
		return ""
	}
	i := strings.LastIndex(provider, ":")
	return strings.TrimSpace(provider[i+1:])
}
