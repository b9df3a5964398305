package services

import (
	"fmt"
	"log/slog"

	pubnub "github.com/pubnub/go"
)

// VotePublisher pushes live tally updates to vote-page subscribers.
type VotePublisher interface {
	PublishVoteCount(eventID, nomineeID string, count int64)
}

// PubNubPublisher publishes vote counts to per-nominee channels. The vote
// page subscribes to "nominee-<id>" and updates its counter in place.
type PubNubPublisher struct {
	pubnub *pubnub.PubNub
}

func NewPubNubPublisher(pn *pubnub.PubNub) *PubNubPublisher {
	return &PubNubPublisher{pubnub: pn}
}

func (p *PubNubPublisher) PublishVoteCount(eventID, nomineeID string, count int64) {
	if p.pubnub == nil {
		return
	}

	channel := fmt.Sprintf("nominee-%s", nomineeID)
	_, _, err := p.pubnub.Publish().
		Channel(channel).
		Message(map[string]any{
			"type":       "vote_count",
			"event_id":   eventID,
			"nominee_id": nomineeID,
			"count":      count,
		}).
		Execute()
	if err != nil {
		// Tally pages self-heal on next load; a dropped publish is not
		// worth failing the vote for.
		slog.Error("Failed to publish vote count", "error", err, "nominee_id", nomineeID)
	}
}
