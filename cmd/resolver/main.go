// Command resolver is the AppSync direct Lambda resolver. It decodes the
// resolver event and returns the operation's value or {"error": message}.
package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/gokulstevee/appsync-rbac-lambda/internal/app"
	"github.com/gokulstevee/appsync-rbac-lambda/internal/config"
	"github.com/gokulstevee/appsync-rbac-lambda/internal/dispatch"
	"github.com/gokulstevee/appsync-rbac-lambda/pkg/logger"
)

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.SetFormat("json")

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	a, err := app.Build(context.Background(), cfg)
	if err != nil {
		logger.Fatalf("failed to build services: %v", err)
	}
	lambda.Start(handler(a.Dispatcher))
}

// handler never returns an error to the runtime: failures are part of the
// resolver result so AppSync hands them to the client verbatim.
func handler(d *dispatch.Dispatcher) func(context.Context, dispatch.Invocation) (interface{}, error) {
	return func(ctx context.Context, inv dispatch.Invocation) (interface{}, error) {
		return d.Dispatch(ctx, inv).Body(), nil
	}
}
