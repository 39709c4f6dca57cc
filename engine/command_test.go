package engine

import (
	"strings"
	"testing"
)

func TestPipelineOrdering(t *testing.T) {
	cmd := Pipeline([]string{"/data/build/odoo-bin", "-d", "demo"})
	cd := strings.Index(cmd, "cd "+MountPath)
	install := strings.Index(cmd, "pip3 install")
	payload := strings.Index(cmd, "/data/build/odoo-bin -d demo")
	if cd == -1 || install == -1 || payload == -1 {
		t.Fatalf("pipeline missing a stage: %q", cmd)
	}
	if !(cd < install && install < payload) {
		t.Fatalf("pipeline stages out of order: %q", cmd)
	}
	if got := strings.Count(cmd, " && "); got < 3 {
		t.Fatalf("expected chained stages, got %d joins in %q", got, cmd)
	}
}

func TestPipelineInstallerFallback(t *testing.T) {
	cmd := Pipeline([]string{"true"})
	if !strings.Contains(cmd, "head -1 "+EntryPoint) {
		t.Fatalf("expected interpreter detection, got %q", cmd)
	}
	pip3 := strings.Index(cmd, "sudo pip3 install -r requirements.txt")
	pip := strings.Index(cmd, "|| sudo pip install -r requirements.txt")
	if pip3 == -1 || pip == -1 || pip < pip3 {
		t.Fatalf("expected pip3 with pip fallback, got %q", cmd)
	}
}

func TestJoinCommandKeepsPlainTokensLiteral(t *testing.T) {
	got := JoinCommand([]string{"/data/build/odoo-bin", "--addons-path=/data/build/addons", "-i", "web"})
	want := "/data/build/odoo-bin --addons-path=/data/build/addons -i web"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestJoinCommandQuotesUnsafeTokens(t *testing.T) {
	got := JoinCommand([]string{"echo", "hello world", "a;rm -rf /", "it's"})
	want := `echo 'hello world' 'a;rm -rf /' 'it'\''s'`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestJoinCommandEmptyToken(t *testing.T) {
	if got := JoinCommand([]string{"echo", ""}); got != "echo ''" {
		t.Fatalf("got %q", got)
	}
}
