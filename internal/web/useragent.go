package web

import (
	"math/rand"
	"sync/atomic"
)

// AppUserAgent identifies API calls, which Unsplash asks clients to do.
const AppUserAgent = "ImageFeed/0.1 (+https://github.com/Kim-Junhwan/ImageFeed)"

// browserAgents are used for image CDNs and gallery pages that serve
// differently sized assets per browser.
var browserAgents = []string{
	"Mozilla/5.0 (iPhone; CPU iPhone OS 17_6_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.6 Mobile/15E148 Safari/604.1",
	"Mozilla/5.0 (iPad; CPU OS 17_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.6 Mobile/15E148 Safari/604.1",
	"Mozilla/5.0 (Linux; Android 14; Pixel 7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/128.0.0.0 Mobile Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_6) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.6 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64; rv:129.0) Gecko/20100101 Firefox/129.0",
}

var agentCursor atomic.Uint64

// NextUserAgent mostly walks the list in order and occasionally jumps.
func NextUserAgent() string {
	if rand.Intn(5) == 0 {
		return browserAgents[rand.Intn(len(browserAgents))]
	}
	return browserAgents[agentCursor.Add(1)%uint64(len(browserAgents))]
}
