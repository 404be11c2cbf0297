//go:build lambda

package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/tidwall/gjson"
)

var jsonHeader = map[string]string{
	"Content-Type": "application/json",
}

// Lambda invocations are capped well below the function timeout.
const maxLambdaTimeLimit = 25 * time.Second

type optimizeResult struct {
	SolveReport
	Detail string `json:"detail"`
}

// requestConfig overlays the optional fields of a request body on cfg:
//
//	{"instance": {...}, "iterations": 200, "seed": 7, "reactive": false,
//	 "alpha": 0.3, "pool": [0.1, 0.5], "updateFrequency": 20,
//	 "workers": 4, "timeLimitMs": 5000}
func requestConfig(body gjson.Result, cfg Config) Config {
	if v := body.Get("iterations"); v.Exists() {
		cfg.Iterations = int(v.Int())
	}
	if v := body.Get("seed"); v.Exists() {
		cfg.Seed = v.Int()
	}
	if v := body.Get("alpha"); v.Exists() {
		cfg.Alpha = v.Float()
		cfg.Reactive = false
	}
	if v := body.Get("reactive"); v.Exists() {
		cfg.Reactive = v.Bool()
	}
	if v := body.Get("pool"); v.IsArray() {
		cfg.AlphaPool = cfg.AlphaPool[:0:0]
		for _, a := range v.Array() {
			cfg.AlphaPool = append(cfg.AlphaPool, a.Float())
		}
	}
	if v := body.Get("updateFrequency"); v.Exists() {
		cfg.UpdateFrequency = int(v.Int())
	}
	if v := body.Get("workers"); v.Exists() {
		cfg.Workers = int(v.Int())
	}
	if v := body.Get("timeLimitMs"); v.Exists() {
		cfg.TimeLimit = time.Duration(v.Int()) * time.Millisecond
	}
	if cfg.TimeLimit <= 0 || cfg.TimeLimit > maxLambdaTimeLimit {
		cfg.TimeLimit = maxLambdaTimeLimit
	}
	return cfg
}

func handler(ctx context.Context, event events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	body := event.Body
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return errResp(400, "invalid base64 body")
		}
		body = string(decoded)
	}
	if !gjson.Valid(body) {
		return errResp(400, "invalid JSON")
	}

	req := gjson.Parse(body)
	raw := req.Get("instance")
	if !raw.IsObject() {
		return errResp(400, "missing instance field")
	}
	in, err := ParseInstanceJSON(raw.Raw)
	if err != nil {
		return errResp(400, err.Error())
	}
	if in.Name == "" {
		in.Name = "request"
	}

	cfg := requestConfig(req, DefaultConfig())
	if err := cfg.Validate(); err != nil {
		return errResp(400, err.Error())
	}

	log := newLogger(os.Stderr, cfg.LogLevel, false, true)
	res, err := solveInstance(ctx, in, cfg, log, nil)
	if err != nil {
		return errResp(422, err.Error())
	}

	var pool []float64
	if cfg.Reactive {
		pool = cfg.AlphaPool
	}
	resp := optimizeResult{
		SolveReport: NewSolveReport(in, res),
		Detail:      FormatResult(in, res, pool),
	}
	respJSON, _ := json.Marshal(resp)
	return events.LambdaFunctionURLResponse{StatusCode: 200, Headers: jsonHeader, Body: string(respJSON)}, nil
}

func errResp(code int, msg string) (events.LambdaFunctionURLResponse, error) {
	body, _ := json.Marshal(map[string]string{"error": msg})
	return events.LambdaFunctionURLResponse{StatusCode: code, Headers: jsonHeader, Body: string(body)}, nil
}

func main() {
	lambda.Start(handler)
}
