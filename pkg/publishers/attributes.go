package publishers

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Attribute keys attached to every queued message so subscribers can filter without decoding the body.
const (
	AttrKeyword  = "keyword"
	AttrChannel  = "channel"
	AttrIsRecent = "is_recent_24h"
)

func eventAttributes(evt Event) map[string]string {
	attrs := map[string]string{
		AttrKeyword:  evt.Keyword,
		AttrIsRecent: strconv.FormatBool(evt.IsRecent),
	}
	if evt.Channel != "" {
		attrs[AttrChannel] = evt.Channel
	}
	return attrs
}

func encodeEvent(evt Event) ([]byte, error) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return payload, nil
}
