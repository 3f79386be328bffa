package email

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"authd/internal/core/domain/user"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/golang-module/carbon/v2"
)

type passwordResetTemplateParams struct {
	PasswordResetUrl string `json:"passwordResetUrl"`
	ValidFor         string `json:"validFor"`
}

type passwordChangedTemplateParams struct {
	Email string `json:"email"`
}

type EmailSender struct {
	ses *ses.Client
	// This address must be verified with Amazon SES.
	sender                  string
	passwordResetTemplate   string
	passwordResetBaseUrl    url.URL
	passwordChangedTemplate string
	tokenValidDuration      time.Duration
}

func NewEmailSender(
	awsConfig aws.Config,
	sender string,
	passwordResetTemplate string,
	passwordResetBaseUrl url.URL,
	passwordChangedTemplate string,
	tokenValidDuration time.Duration,
) *EmailSender {
	return &EmailSender{
		ses:                     ses.NewFromConfig(awsConfig),
		sender:                  sender,
		passwordResetTemplate:   passwordResetTemplate,
		passwordResetBaseUrl:    passwordResetBaseUrl,
		passwordChangedTemplate: passwordChangedTemplate,
		tokenValidDuration:      tokenValidDuration,
	}
}

func (s *EmailSender) resetTemplateData(token user.PasswordResetToken) (string, error) {
	now := time.Now()
	validFor := carbon.Time2Carbon(now).DiffAbsInString(
		carbon.Time2Carbon(now.Add(s.tokenValidDuration)),
	)

	templateParamsBytes, err := json.Marshal(
		passwordResetTemplateParams{
			PasswordResetUrl: s.passwordResetBaseUrl.JoinPath(string(token)).String(),
			ValidFor:         validFor,
		},
	)
	return string(templateParamsBytes), err
}

func (s *EmailSender) SendPasswordResetToken(
	ctx context.Context,
	u user.User,
	token user.PasswordResetToken,
) error {
	templateParams, err := s.resetTemplateData(token)
	if err != nil {
		return err
	}

	email := string(u.Email)
	_, err = s.ses.SendTemplatedEmail(
		ctx,
		&ses.SendTemplatedEmailInput{
			Source: &s.sender,
			Destination: &types.Destination{
				CcAddresses: []string{},
				ToAddresses: []string{email},
			},
			Template:     &s.passwordResetTemplate,
			TemplateData: &templateParams,
		},
	)
	return err
}

func (s *EmailSender) SendPasswordChangedNotification(ctx context.Context, u user.User) error {
	templateParamsBytes, err := json.Marshal(
		passwordChangedTemplateParams{Email: string(u.Email)},
	)
	if err != nil {
		return err
	}
	templateParams := string(templateParamsBytes)

	email := string(u.Email)
	_, err = s.ses.SendTemplatedEmail(
		ctx,
		&ses.SendTemplatedEmailInput{
			Source: &s.sender,
			Destination: &types.Destination{
				CcAddresses: []string{},
				ToAddresses: []string{email},
			},
			Template:     &s.passwordChangedTemplate,
			TemplateData: &templateParams,
		},
	)
	return err
}
