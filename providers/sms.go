package providers

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

const otpMessage = "Your Medical Store verification code is %s. It expires in 10 minutes."

// TwilioSender sends codes as SMS through Twilio's Messages API
type TwilioSender struct {
	client      *twilio.RestClient
	from        string
	countryCode string
}

func NewTwilioSender(accountSID, authToken, from, countryCode string) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSender{client: client, from: from, countryCode: countryCode}
}

// SendCode texts code to a ten digit local number
func (s *TwilioSender) SendCode(ctx context.Context, phone, code string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(s.countryCode + phone)
	params.SetFrom(s.from)
	params.SetBody(fmt.Sprintf(otpMessage, code))

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return false, fmt.Errorf("twilio create message: %w", err)
	}
	if resp.ErrorCode != nil {
		return false, nil
	}
	return true, nil
}

// LogSender writes codes to the log instead of sending them. Development only.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) SendCode(_ context.Context, phone, code string) (bool, error) {
	s.logger.Info("otp issued", zap.String("mobileNumber", phone), zap.String("otp", code))
	return true, nil
}
