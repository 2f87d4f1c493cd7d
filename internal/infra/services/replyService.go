package services

import (
	"fmt"

	"para-predict/internal/botconfig"
	"para-predict/internal/domain/entities"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// ReplyService renders every engine outcome into outbound message payloads.
// All user-facing strings come from the messages config snapshot.
type ReplyService struct {
	messages *botconfig.Provider
}

func NewReplyService(messages *botconfig.Provider) *ReplyService {
	return &ReplyService{messages: messages}
}

// Welcome is sent once on a follow event: greeting text plus the welcome
// sticker.
func (rs *ReplyService) Welcome() []messaging_api.MessageInterface {
	m := rs.messages.Get()
	return []messaging_api.MessageInterface{
		messaging_api.TextMessage{Text: m.Welcome, QuickReply: rs.quickMenu(m)},
		messaging_api.StickerMessage{
			PackageId: m.Sticker.PackageID,
			StickerId: m.Sticker.StickerID,
		},
	}
}

func (rs *ReplyService) Help() []messaging_api.MessageInterface {
	m := rs.messages.Get()
	return []messaging_api.MessageInterface{
		messaging_api.TextMessage{Text: m.Help, QuickReply: rs.quickMenu(m)},
	}
}

// Prompt carries a dialogue question. No quick replies: the user is expected
// to type the value.
func (rs *ReplyService) Prompt(text string) []messaging_api.MessageInterface {
	return []messaging_api.MessageInterface{
		messaging_api.TextMessage{Text: text},
	}
}

// InvalidAnswer explains the rejection and re-issues the same prompt verbatim.
func (rs *ReplyService) InvalidAnswer(field entities.Field) []messaging_api.MessageInterface {
	m := rs.messages.Get()

	var explanation string
	if field.Kind == entities.KindDate {
		explanation = m.InvalidDate
	} else {
		explanation = fmt.Sprintf(m.InvalidNumber, field.Key)
	}

	return []messaging_api.MessageInterface{
		messaging_api.TextMessage{Text: explanation + "\n" + field.Prompt},
	}
}

func (rs *ReplyService) Result(display string) []messaging_api.MessageInterface {
	m := rs.messages.Get()
	return []messaging_api.MessageInterface{
		messaging_api.TextMessage{Text: fmt.Sprintf(m.PredictResult, display), QuickReply: rs.quickMenu(m)},
	}
}

func (rs *ReplyService) MissingResult() []messaging_api.MessageInterface {
	m := rs.messages.Get()
	return []messaging_api.MessageInterface{
		messaging_api.TextMessage{Text: m.PredictMissing, QuickReply: rs.quickMenu(m)},
	}
}

func (rs *ReplyService) TransportApology() []messaging_api.MessageInterface {
	m := rs.messages.Get()
	return []messaging_api.MessageInterface{
		messaging_api.TextMessage{Text: m.PredictFailed, QuickReply: rs.quickMenu(m)},
	}
}

func (rs *ReplyService) LocationSaved(coord entities.Coordinates) []messaging_api.MessageInterface {
	m := rs.messages.Get()
	return []messaging_api.MessageInterface{
		messaging_api.TextMessage{
			Text:       fmt.Sprintf(m.LocationSaved, coord.Latitude, coord.Longitude),
			QuickReply: rs.quickMenu(m),
		},
	}
}

// StoredLocation reports the coordinate already on file, as opposed to
// acknowledging a fresh share.
func (rs *ReplyService) StoredLocation(coord entities.Coordinates) []messaging_api.MessageInterface {
	m := rs.messages.Get()
	return []messaging_api.MessageInterface{
		messaging_api.TextMessage{
			Text:       fmt.Sprintf(m.LocationStored, coord.Latitude, coord.Longitude),
			QuickReply: rs.quickMenu(m),
		},
	}
}

// NoLocation asks the user to share a location via a buttons template with a
// tap-to-share action.
func (rs *ReplyService) NoLocation() []messaging_api.MessageInterface {
	m := rs.messages.Get()
	return []messaging_api.MessageInterface{
		messaging_api.TextMessage{Text: m.NoLocation},
		messaging_api.TemplateMessage{
			AltText: m.AskLocation,
			Template: messaging_api.ButtonsTemplate{
				Text: m.AskLocation,
				Actions: []messaging_api.ActionInterface{
					messaging_api.LocationAction{Label: m.Labels.ShareLocation},
				},
			},
		},
	}
}

func (rs *ReplyService) quickMenu(m *botconfig.Messages) *messaging_api.QuickReply {
	return &messaging_api.QuickReply{
		Items: []messaging_api.QuickReplyItem{
			{Action: messaging_api.MessageAction{Label: m.Labels.Predict, Text: m.Labels.Predict}},
			{Action: messaging_api.MessageAction{Label: m.Labels.MyLocation, Text: m.Labels.MyLocation}},
			{Action: messaging_api.MessageAction{Label: m.Labels.Help, Text: m.Labels.Help}},
		},
	}
}
