package identity

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	cip "github.com/aws/aws-sdk-go/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go/service/cognitoidentityprovider/cognitoidentityprovideriface"
)

// CognitoProvider administers accounts in a Cognito user pool.
type CognitoProvider struct {
	Client     cognitoidentityprovideriface.CognitoIdentityProviderAPI
	UserPoolID string
}

// NewCognitoProvider creates a CognitoProvider using the given session.
func NewCognitoProvider(sess *session.Session, userPoolID string) *CognitoProvider {
	return &CognitoProvider{
		Client:     cip.New(sess),
		UserPoolID: userPoolID,
	}
}

func (p *CognitoProvider) CreateUser(ctx context.Context, in CreateUserInput) error {
	_, err := p.Client.AdminCreateUserWithContext(ctx, &cip.AdminCreateUserInput{
		UserPoolId:        aws.String(p.UserPoolID),
		Username:          aws.String(in.Username),
		TemporaryPassword: aws.String(in.TemporaryPassword),
		UserAttributes: []*cip.AttributeType{
			{Name: aws.String("email"), Value: aws.String(in.Email)},
			{Name: aws.String("email_verified"), Value: aws.String("true")},
			{Name: aws.String("name"), Value: aws.String(in.Name)},
		},
	})
	return translate("AdminCreateUser", err)
}

func (p *CognitoProvider) AddUserToGroup(ctx context.Context, username, group string) error {
	_, err := p.Client.AdminAddUserToGroupWithContext(ctx, &cip.AdminAddUserToGroupInput{
		UserPoolId: aws.String(p.UserPoolID),
		Username:   aws.String(username),
		GroupName:  aws.String(group),
	})
	return translate("AdminAddUserToGroup", err)
}

func (p *CognitoProvider) RemoveUserFromGroup(ctx context.Context, username, group string) error {
	_, err := p.Client.AdminRemoveUserFromGroupWithContext(ctx, &cip.AdminRemoveUserFromGroupInput{
		UserPoolId: aws.String(p.UserPoolID),
		Username:   aws.String(username),
		GroupName:  aws.String(group),
	})
	return translate("AdminRemoveUserFromGroup", err)
}

func (p *CognitoProvider) GetUser(ctx context.Context, username string) (*Account, error) {
	out, err := p.Client.AdminGetUserWithContext(ctx, &cip.AdminGetUserInput{
		UserPoolId: aws.String(p.UserPoolID),
		Username:   aws.String(username),
	})
	if err != nil {
		return nil, translate("AdminGetUser", err)
	}
	a := &Account{
		Username: aws.StringValue(out.Username),
		Status:   aws.StringValue(out.UserStatus),
	}
	for _, attr := range out.UserAttributes {
		switch aws.StringValue(attr.Name) {
		case "sub":
			a.Sub = aws.StringValue(attr.Value)
		case "email":
			a.Email = aws.StringValue(attr.Value)
		case "name":
			a.Name = aws.StringValue(attr.Value)
		}
	}
	return a, nil
}

func (p *CognitoProvider) DeleteUser(ctx context.Context, username string) error {
	_, err := p.Client.AdminDeleteUserWithContext(ctx, &cip.AdminDeleteUserInput{
		UserPoolId: aws.String(p.UserPoolID),
		Username:   aws.String(username),
	})
	return translate("AdminDeleteUser", err)
}

// translate maps Cognito error codes onto the package's sentinel errors.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	var aerr awserr.Error
	if !errors.As(err, &aerr) {
		return &APIError{Op: op, Message: err.Error()}
	}
	e := &APIError{Op: op, Code: aerr.Code(), Message: aerr.Message()}
	switch aerr.Code() {
	case cip.ErrCodeUsernameExistsException, cip.ErrCodeAliasExistsException:
		e.Kind = ErrUserExists
	case cip.ErrCodeUserNotFoundException:
		e.Kind = ErrUserNotFound
	case cip.ErrCodeResourceNotFoundException:
		e.Kind = ErrGroupNotFound
	case cip.ErrCodeTooManyRequestsException:
		e.Kind = ErrThrottled
	}
	return e
}
