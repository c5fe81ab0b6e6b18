package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"k8s.io/klog/v2"

	"github.com/policyevo/policyevo/pkg/runner"
)

var jsonHeader = map[string]string{
	"Content-Type": "application/json",
}

func handler(ctx context.Context, event events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	body := event.Body
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return errResp(http.StatusBadRequest, "invalid base64 body")
		}
		body = string(decoded)
	}

	logger := klog.FromContext(ctx).WithValues("requestId", event.RequestContext.RequestID)
	ctx = klog.NewContext(ctx, logger)

	req, err := runner.ParseRequest([]byte(body), runner.ModeOptimize)
	if err != nil {
		return errResp(runner.StatusCode(err), err.Error())
	}
	resp, err := runner.Run(ctx, req)
	if err != nil {
		return errResp(runner.StatusCode(err), err.Error())
	}

	respJSON, err := json.Marshal(resp)
	if err != nil {
		return errResp(http.StatusInternalServerError, err.Error())
	}
	return events.LambdaFunctionURLResponse{StatusCode: http.StatusOK, Headers: jsonHeader, Body: string(respJSON)}, nil
}

func errResp(code int, msg string) (events.LambdaFunctionURLResponse, error) {
	body, _ := json.Marshal(runner.ErrorResponse{Error: msg})
	return events.LambdaFunctionURLResponse{StatusCode: code, Headers: jsonHeader, Body: string(body)}, nil
}

func main() {
	lambda.Start(handler)
}
