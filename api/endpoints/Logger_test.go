package endpoints

import (
	"net/http"
	"strings"
	"testing"
)

func Test_logLevel(t *testing.T) {
	svcs := makeMockSvcs(nil)
	apiRouter := MakeRouter(&svcs)

	req, _ := http.NewRequest("GET", "/logger/level", nil)
	resp := executeRequest(req, apiRouter.Router)

	if resp.Code != http.StatusOK {
		t.Errorf("Unexpected status: %v", resp.Code)
	}
	if strings.TrimSpace(resp.Body.String()) != `"DEBUG"` {
		t.Errorf("Unexpected level: %v", resp.Body.String())
	}

	// Unknown level name fails
	req, _ = http.NewRequest("PUT", "/logger/level/CHATTY", nil)
	resp = executeRequest(req, apiRouter.Router)
	if resp.Code != http.StatusInternalServerError {
		t.Errorf("Expected bad level to fail, got: %v", resp.Code)
	}

	// A real one succeeds
	req, _ = http.NewRequest("PUT", "/logger/level/INFO", nil)
	resp = executeRequest(req, apiRouter.Router)
	if resp.Code != http.StatusOK {
		t.Errorf("Unexpected status: %v", resp.Code)
	}
}
