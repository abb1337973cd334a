package server

import "testing"

func TestUriToPathRoundTrip(t *testing.T) {
	path, err := uriToPath("file:///home/dev/project/src/Token.sol")
	if err != nil {
		t.Fatalf("uriToPath: %v", err)
	}
	if string(path) != "/home/dev/project/src/Token.sol" {
		t.Fatalf("got %q", path)
	}

	uri := pathToURI(path)
	if uri != "file:///home/dev/project/src/Token.sol" {
		t.Fatalf("pathToURI round trip = %q", uri)
	}
}

func TestUriToPathRejectsNonFileScheme(t *testing.T) {
	if _, err := uriToPath("untitled:Untitled-1"); err == nil {
		t.Fatal("expected an error for a non-file scheme")
	}
}
