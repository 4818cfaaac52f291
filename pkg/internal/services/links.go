package services

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/meetlinkapp/meetlink/pkg/internal/config"
)

func MeetingLink(callId string) (string, error) {
	base, err := config.SiteBaseURL()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/meeting/%s", base, callId), nil
}

func MeetingLeftLink(callId string) (string, error) {
	link, err := MeetingLink(callId)
	if err != nil {
		return "", err
	}
	return link + "/left", nil
}

// mailto links carry percent-encoded query parts; url.Values encodes
// spaces as "+", which mail clients do not decode.
func encodeMailtoPart(part string) string {
	return strings.ReplaceAll(url.QueryEscape(part), "+", "%20")
}

// MailtoLink pre-fills an email invitation with the meeting link, the
// human-readable start time when scheduled, and the description when
// one was set.
func MailtoLink(meetingLink string, startsAt *time.Time, description string) string {
	var startDate string
	if startsAt != nil {
		startDate = startsAt.Format("Monday, January 2, 2006 at 3:04 PM")
	}

	subject := "Join meeting"
	if len(startDate) > 0 {
		subject += " at " + startDate
	}

	body := fmt.Sprintf("Join my meeting at %s.", meetingLink)
	if len(startDate) > 0 {
		body += fmt.Sprintf("\n\nThe meeting starts at %s.", startDate)
	}
	if len(description) > 0 {
		body += fmt.Sprintf("\n\nDescription: %s", description)
	}

	return fmt.Sprintf("mailto:?subject=%s&body=%s", encodeMailtoPart(subject), encodeMailtoPart(body))
}
