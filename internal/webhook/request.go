package webhook

import (
	"maps"
	"path"
	"strings"

	"github.com/bansi-007/dialogflow-cx-usecase/internal/bot"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/cxutil"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/errors"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/session"
)

// validate rejects envelopes that carry none of the routing inputs.
func validate(wr *cxutil.WebhookRequest) error {
	if wr == nil {
		return errors.ErrMalformedRequest
	}
	if wr.FulfillmentInfo == nil && wr.IntentInfo == nil && wr.PageInfo == nil &&
		wr.SessionInfo == nil && strings.TrimSpace(wr.Text) == "" {
		return errors.ErrEmptyRequest
	}
	return nil
}

// NewRequest flattens a CX envelope into a routing request. Current-turn
// parameters use the resolved value, falling back to the original text.
func NewRequest(wr *cxutil.WebhookRequest) *bot.Request {
	req := &bot.Request{
		LanguageCode: wr.LanguageCode,
		Params:       session.Params{},
		Session:      session.Params{},
	}

	if fi := wr.FulfillmentInfo; fi != nil {
		req.Tag = strings.TrimSpace(fi.Tag)
	}

	if ii := wr.IntentInfo; ii != nil {
		req.Intent = ii.DisplayName
		for key, v := range ii.Parameters {
			if v.ResolvedValue != nil {
				req.Params[key] = v.ResolvedValue
			} else if v.OriginalValue != "" {
				req.Params[key] = v.OriginalValue
			}
		}
	}

	// Card buttons send their payload back as the query text.
	if pb, ok := cxutil.ParsePostback(wr.Text); ok {
		if req.Tag == "" {
			req.Tag = pb.Tag
		}
		if pb.ID != "" {
			req.Params["book_id"] = pb.ID
		}
		if pb.Action != "" {
			req.Params["action"] = pb.Action
		}
	}

	if pi := wr.PageInfo; pi != nil {
		req.Flow = label(pi.CurrentFlow)
		req.Page = label(pi.CurrentPage)
		if req.Page == "" {
			req.Page = pi.DisplayName
		}
	}

	if si := wr.SessionInfo; si != nil {
		maps.Copy(req.Session, si.Parameters)
		if si.Session != "" {
			req.SessionID = path.Base(si.Session)
		}
	}

	return req
}

// label prefers the display name; CX sometimes sends only the resource name.
func label(r *cxutil.Resource) string {
	if r == nil {
		return ""
	}
	if r.DisplayName != "" {
		return r.DisplayName
	}
	return r.Name
}
