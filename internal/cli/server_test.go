package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clintdigital/terraform-provider-danswer/internal/client"
)

// fakeServer is an in-memory Danswer API server. Background work completes
// as soon as it is triggered.
type fakeServer struct {
	mu        sync.Mutex
	pairs     []client.IndexingStatus
	pruned    string
	nextID    int
	statuses  []string
	deletions []client.DeletionAttemptRequest
	headers   []http.Header
}

func newFakeServer(t *testing.T, pairs ...client.IndexingStatus) (*fakeServer, *httptest.Server) {
	t.Helper()
	fs := &fakeServer{pairs: pairs, nextID: 100}
	server := httptest.NewServer(http.HandlerFunc(fs.serve))
	t.Cleanup(server.Close)
	return fs, server
}

func (fs *fakeServer) serve(w http.ResponseWriter, r *http.Request) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.headers = append(fs.headers, r.Header.Clone())

	var id, connectorID, credentialID int
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/manage/admin/connector/indexing-status":
		writeJSON(w, fs.pairs)

	case r.Method == http.MethodPut && matches(r.URL.Path, "/manage/connector/%d/credential/%d", &connectorID, &credentialID):
		var req client.CCPairRequest
		json.NewDecoder(r.Body).Decode(&req)
		fs.nextID++
		fs.pairs = append(fs.pairs, client.IndexingStatus{
			CCPairID:     fs.nextID,
			Name:         req.Name,
			CCPairStatus: client.CCPairStatusActive,
			Connector:    client.ObjectRef{ID: connectorID},
			Credential:   client.ObjectRef{ID: credentialID},
			AccessType:   req.AccessType,
			Groups:       req.Groups,
		})
		writeJSON(w, client.CCPairCreatedResponse{Success: true, Data: fs.nextID})

	case r.Method == http.MethodPut && matches(r.URL.Path, "/manage/admin/cc-pair/%d/status", &id):
		var req client.CCPairStatusRequest
		json.NewDecoder(r.Body).Decode(&req)
		fs.statuses = append(fs.statuses, string(req.Status))
		for i := range fs.pairs {
			if fs.pairs[i].CCPairID == id {
				fs.pairs[i].CCPairStatus = req.Status
			}
		}
		writeJSON(w, map[string]any{})

	case r.Method == http.MethodPost && r.URL.Path == "/manage/admin/connector/run-once":
		var req client.RunOnceRequest
		json.NewDecoder(r.Body).Decode(&req)
		done := client.Timestamp{Time: time.Now().UTC().Add(time.Second)}
		for i := range fs.pairs {
			if fs.pairs[i].Connector.ID == req.ConnectorID {
				fs.pairs[i].LastSuccess = &done
			}
		}
		writeJSON(w, map[string]any{})

	case r.Method == http.MethodPost && matches(r.URL.Path, "/manage/admin/cc-pair/%d/prune", &id):
		fs.pruned = time.Now().UTC().Add(time.Second).Format(time.RFC3339Nano)
		writeJSON(w, map[string]any{})

	case r.Method == http.MethodGet && matches(r.URL.Path, "/manage/admin/cc-pair/%d/last_pruned", &id):
		if fs.pruned == "" {
			writeJSON(w, nil)
			return
		}
		writeJSON(w, fs.pruned)

	case r.Method == http.MethodGet && matches(r.URL.Path, "/manage/admin/cc-pair/%d/sync", &id):
		http.Error(w, `{"detail":"not found"}`, http.StatusNotFound)

	case r.Method == http.MethodPost && r.URL.Path == "/manage/admin/deletion-attempt":
		var req client.DeletionAttemptRequest
		json.NewDecoder(r.Body).Decode(&req)
		fs.deletions = append(fs.deletions, req)
		kept := fs.pairs[:0]
		for _, p := range fs.pairs {
			if p.Connector.ID != req.ConnectorID || p.Credential.ID != req.CredentialID {
				kept = append(kept, p)
			}
		}
		fs.pairs = kept
		writeJSON(w, map[string]any{})

	default:
		http.Error(w, "unexpected "+r.Method+" "+r.URL.Path, http.StatusTeapot)
	}
}

func matches(path, pattern string, args ...any) bool {
	_, err := fmt.Sscanf(path, pattern, args...)
	return err == nil && fmt.Sprintf(pattern, derefInts(args)...) == path
}

func derefInts(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = *(a.(*int))
	}
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func pair(id int, name string) client.IndexingStatus {
	return client.IndexingStatus{
		CCPairID:     id,
		Name:         name,
		CCPairStatus: client.CCPairStatusActive,
		Connector:    client.ObjectRef{ID: 10},
		Credential:   client.ObjectRef{ID: 20},
		AccessType:   client.AccessTypePrivate,
		Groups:       []int{1, 2},
	}
}

// writeConfig writes a config file pointing at server with fast waits.
func writeConfig(t *testing.T, serverURL string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "harness.yaml")
	content := fmt.Sprintf(`api_server_url: %s
api_key: test-key
wait:
  timeout: 2s
  interval: 10ms
  deletion_interval: 10ms
`, serverURL)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// execute runs the root command with args and returns stdout, stderr and the error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand("test")
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func decodeResponse(t *testing.T, out string) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.NewDecoder(strings.NewReader(out)).Decode(&resp))
	return resp
}
