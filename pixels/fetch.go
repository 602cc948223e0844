//go:build js && wasm

package pixels

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"syscall/js"
	"time"
)

// FetchAsset downloads a file served next to the wasm bundle and
// returns its raw bytes. It is used to pull in the detection cascades.
func FetchAsset(path string) ([]byte, error) {
	href := js.Global().Get("location").Get("href")
	u, err := url.Parse(href.String())
	if err != nil {
		return nil, err
	}

	u.Path = path
	u.RawQuery = fmt.Sprint(time.Now().UnixNano())

	resp, err := http.Get(u.String())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed fetching %s: %s", path, resp.Status)
	}

	return io.ReadAll(resp.Body)
}
