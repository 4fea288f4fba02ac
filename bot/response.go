package bot

import (
	"net/http"

	"github.com/diamondburned/arikawa/v3/utils/httputil/httpdriver"
	"github.com/starshine-sys/inviteroles/common/log"
)

// onResponse logs a request's status code and counts failed requests.
func (bot *Bot) onResponse(req httpdriver.Request, resp httpdriver.Response) error {
	method := ""

	v, ok := req.(*httpdriver.DefaultRequest)
	if ok {
		method = v.Method
		if method == "" {
			method = "GET"
		}
	}

	if resp == nil {
		return nil
	}

	status := resp.GetStatus()
	log.Debugf("%v %v => %v", method, req.GetPath(), status)

	switch {
	case status == http.StatusTooManyRequests:
		bot.Stats.RegisterEvent("rest_ratelimited")
	case status >= 500:
		bot.Stats.RegisterEvent("rest_server_error")
	case status >= 400:
		bot.Stats.RegisterEvent("rest_client_error")
	}
	return nil
}
