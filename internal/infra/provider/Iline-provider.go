package provider

import "github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

// ILineProvider sends replies back to the messaging platform. A reply token
// is valid for exactly one reply.
type ILineProvider interface {
	Reply(replyToken string, messages []messaging_api.MessageInterface) error
}
