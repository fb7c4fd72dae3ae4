package main

import (
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"tracking/internal/handlers"
)

func main() {
	lambda.Start(handlers.NewHealth(os.LookupEnv).Handle)
}
