package ps

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDetectScheme(t *testing.T) {
	tests := []struct {
		path     string
		expected urlScheme
	}{
		{"s3://bucket/key.json", schemeS3},
		{"S3://bucket/key.json", schemeS3},
		{"https://example.com/db.json", schemeHTTPS},
		{"http://example.com/db.json", schemeHTTP},
		{"file:///tmp/db.json", schemeFile},
		{"/tmp/db.json", schemeLocal},
		{"backup.json", schemeLocal},
	}

	for _, test := range tests {
		if actual := detectScheme(test.path); actual != test.expected {
			t.Errorf("detectScheme(%q): expected %s, got %s", test.path, test.expected, actual)
		}
	}
}

func TestParseS3URL(t *testing.T) {
	bucket, key, err := parseS3URL("s3://my-bucket/backups/db.json")
	if err != nil {
		t.Fatalf("parseS3URL failed: %v", err)
	}
	if bucket != "my-bucket" || key != "backups/db.json" {
		t.Errorf("Expected my-bucket, backups/db.json, got %s, %s", bucket, key)
	}

	for _, url := range []string{"s3://bucket", "s3://bucket/", "s3:///key"} {
		if _, _, err := parseS3URL(url); err == nil {
			t.Errorf("Expected error for %s", url)
		}
	}
}

func TestExportImportLocal(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "backup.json")
	expected := usersSnapshot()

	if err := ExportSnapshot(ctx, expected, path, nil); err != nil {
		t.Fatalf("ExportSnapshot failed: %v", err)
	}

	for _, url := range []string{path, "file://" + path} {
		actual, err := ImportSnapshot(ctx, url, nil)
		if err != nil {
			t.Fatalf("ImportSnapshot(%s) failed: %v", url, err)
		}
		if !reflect.DeepEqual(actual, expected) {
			t.Errorf("Expected %+v, got %+v", expected, actual)
		}
	}
}

func TestImportHTTP(t *testing.T) {
	data, err := EncodeSnapshot(usersSnapshot())
	if err != nil {
		t.Fatal(err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/db.json" {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
	defer server.Close()

	actual, err := ImportSnapshot(context.Background(), server.URL+"/db.json", nil)
	if err != nil {
		t.Fatalf("ImportSnapshot failed: %v", err)
	}
	if !reflect.DeepEqual(actual, usersSnapshot()) {
		t.Errorf("Expected %+v, got %+v", usersSnapshot(), actual)
	}

	if _, err := ImportSnapshot(context.Background(), server.URL+"/missing.json", nil); err == nil {
		t.Error("Expected error for missing document")
	}

	if err := ExportSnapshot(context.Background(), usersSnapshot(), server.URL+"/db.json", nil); err == nil {
		t.Error("Expected error exporting to HTTP")
	}
}
