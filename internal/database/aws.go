package database

import (
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
)

// NewAWSSession creates the session shared by the DynamoDB and Cognito
// clients. A non-empty endpoint points both at a local emulator.
func NewAWSSession(region, endpoint string) (*session.Session, error) {
	conf := &aws.Config{
		Region: aws.String(region),
	}
	if endpoint != "" {
		conf.Endpoint = aws.String(endpoint)
	}
	sess, err := session.NewSession(conf)
	if err != nil {
		return nil, fmt.Errorf("aws session: %w", err)
	}
	return sess, nil
}
