package provider

import (
	"fmt"

	"para-predict/internal/infra/logger"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

type LineProvider struct {
	Logger *logger.Logger
	API    *messaging_api.MessagingApiAPI
}

func NewLineProvider(logger *logger.Logger, api *messaging_api.MessagingApiAPI) *LineProvider {
	return &LineProvider{Logger: logger, API: api}
}

func (p *LineProvider) Reply(replyToken string, messages []messaging_api.MessageInterface) error {
	if replyToken == "" || len(messages) == 0 {
		return fmt.Errorf("reply token and messages cannot be empty")
	}

	_, err := p.API.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   messages,
	})
	if err != nil {
		p.Logger.Error(fmt.Sprintf("Failed to send reply: %v", err))
		return fmt.Errorf("send reply: %w", err)
	}
	return nil
}
