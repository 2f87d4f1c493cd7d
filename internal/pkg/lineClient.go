package client

import (
	"log"

	"para-predict/internal/config"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

func LineClient() *messaging_api.MessagingApiAPI {
	token := config.GetEnv("LINE_CHANNEL_TOKEN")

	api, err := messaging_api.NewMessagingApiAPI(token)
	if err != nil {
		log.Fatalf("error creating LINE messaging client: %v", err)
	}
	return api
}
