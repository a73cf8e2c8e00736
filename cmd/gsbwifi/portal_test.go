package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	zkeyring "github.com/zalando/go-keyring"

	"github.com/shini4i/gsbwifi/internal/config"
	"github.com/shini4i/gsbwifi/internal/credentials"
	"github.com/shini4i/gsbwifi/internal/keepalive"
)

const (
	testUser     = "12345678901"
	testPassword = "s3cret"
)

// fakePortal emulates the captive portal. Authentication is tracked per
// server, the way the real portal tracks the client address.
type fakePortal struct {
	mu       sync.Mutex
	loggedIn bool
	logins   int
}

func (p *fakePortal) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/login.html", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		loggedIn := p.loggedIn
		p.mu.Unlock()
		if loggedIn {
			http.Redirect(w, r, "/index.html", http.StatusFound)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "abc", Path: "/"})
		alert := ""
		if r.URL.Query().Get("error") != "" {
			alert = `<div class="alert alert-danger">Kullanıcı adı veya şifre hatalı</div>`
		}
		_, _ = fmt.Fprintf(w, `<html><body>%s
<form action="j_spring_security_check" method="post">
<input type="hidden" name="csrf" value="tok">
<input name="j_username"><input type="password" name="j_password">
</form></body></html>`, alert)
	})
	mux.HandleFunc("/j_spring_security_check", func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("JSESSIONID"); err != nil || r.FormValue("csrf") != "tok" ||
			r.FormValue("j_username") != testUser || r.FormValue("j_password") != testPassword {
			http.Redirect(w, r, "/login.html?error=true", http.StatusFound)
			return
		}
		p.mu.Lock()
		p.loggedIn = true
		p.logins++
		p.mu.Unlock()
		http.Redirect(w, r, "/index.html", http.StatusFound)
	})
	index := func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		loggedIn := p.loggedIn
		p.mu.Unlock()
		if !loggedIn {
			http.Redirect(w, r, "/login.html", http.StatusFound)
			return
		}
		_, _ = fmt.Fprint(w, `<html><body><span>Hoş geldiniz Ahmet Yılmaz</span>
<table>
<tr><td>Toplam Kalan Kota (MB):</td><td>892.0</td></tr>
<tr><td>Toplam Kota (MB):</td><td>32768.0</td></tr>
</table><a href="/logout">Güvenli Çıkış</a></body></html>`)
	}
	mux.HandleFunc("/index.html", index)
	mux.HandleFunc("/logout", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		p.loggedIn = false
		p.mu.Unlock()
		http.Redirect(w, r, "/login.html?logout=1", http.StatusFound)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		index(w, r)
	})
	return mux
}

func (p *fakePortal) loginCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.logins
}

type cliEnv struct {
	portal     *fakePortal
	configPath string
	configDir  string
}

func setupCLI(t *testing.T) *cliEnv {
	t.Helper()
	zkeyring.MockInit()

	p := &fakePortal{}
	srv := httptest.NewServer(p.handler())
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv(config.EnvPortalURL, srv.URL)
	t.Setenv(config.EnvLoginPageURL, srv.URL+"/login.html")
	t.Setenv(config.EnvLogoutURL, srv.URL+"/logout")
	t.Setenv(config.EnvAuthURL, "")
	t.Setenv(config.EnvQuotaURL, "")
	t.Setenv(credentials.EnvUsername, testUser)
	t.Setenv(credentials.EnvPassword, testPassword)

	configDir := filepath.Join(dir, "gsbwifi")
	require.NoError(t, os.MkdirAll(configDir, 0700))
	return &cliEnv{portal: p, configDir: configDir, configPath: filepath.Join(configDir, config.ConfigFileName)}
}

func (e *cliEnv) run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	full := append([]string{
		"--config", e.configPath,
		"--env-file", filepath.Join(e.configDir, ".env"),
		"--skip-preflight",
	}, args...)
	cmd.SetArgs(full)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestCLI_LoginStatusLogout(t *testing.T) {
	env := setupCLI(t)
	marker := keepalive.NewPauseMarker(env.configDir)

	out, _, err := env.run(t, "login")
	require.NoError(t, err, out)
	assert.Contains(t, out, "✔ Kalan Kota: 892.0 MB")
	assert.Contains(t, out, "Giriş başarılı")
	assert.Contains(t, out, "Toplam Kota (MB): 32768.0")
	assert.Equal(t, 1, env.portal.loginCount())

	out, _, err = env.run(t, "status")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Sayın Ahmet Yılmaz")
	assert.Contains(t, out, "Kalan: 892.0 MB / 32.0 GB (%97.3 kullanıldı)")

	out, _, err = env.run(t, "logout")
	require.NoError(t, err, out)
	assert.Contains(t, out, "✔ Çıkış başarılı.")
	assert.True(t, marker.Paused(), "logout pauses the watchdog")

	out, _, err = env.run(t, "status")
	assert.ErrorIs(t, err, errFailed)
	assert.Contains(t, out, "Oturum kapalı")

	_, _, err = env.run(t, "login")
	require.NoError(t, err)
	assert.False(t, marker.Paused(), "login resumes the watchdog")
}

func TestCLI_LoginAlreadyLoggedIn(t *testing.T) {
	env := setupCLI(t)
	env.portal.loggedIn = true

	out, _, err := env.run(t, "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Zaten giriş yapılmış görünüyor.")
	assert.Zero(t, env.portal.loginCount())
}

func TestCLI_LoginRejected(t *testing.T) {
	env := setupCLI(t)
	require.NoError(t, os.WriteFile(env.configPath, []byte(`{"max_attempts":1}`), 0600))
	t.Setenv(credentials.EnvPassword, "wrong")

	out, _, err := env.run(t, "login")
	assert.ErrorIs(t, err, errFailed)
	assert.Contains(t, out, "✘ Kullanıcı adı veya şifre hatalı")
}

func TestCLI_LoginMissingCredentials(t *testing.T) {
	env := setupCLI(t)
	t.Setenv(credentials.EnvUsername, "")
	t.Setenv(credentials.EnvPassword, "")

	out, _, err := env.run(t, "login", "--account", "2")
	assert.ErrorIs(t, err, errFailed)
	assert.Contains(t, out, "Kullanıcı bilgisi bulunamadı.")
}

func TestCLI_InvalidConfig(t *testing.T) {
	env := setupCLI(t)
	t.Setenv(config.EnvPortalURL, "ftp://wifi.gsb.gov.tr")

	_, stderr, err := env.run(t, "status")
	assert.ErrorIs(t, err, errFailed)
	assert.Contains(t, stderr, "invalid configuration")
}

func TestCLI_ConfigInitAndShow(t *testing.T) {
	env := setupCLI(t)
	require.NoError(t, os.Remove(env.configDir))

	out, _, err := env.run(t, "config", "init")
	require.NoError(t, err, out)
	assert.Contains(t, out, env.configPath)

	cfg, err := config.Load(env.configPath)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)

	out, _, err = env.run(t, "config", "init")
	assert.ErrorIs(t, err, errFailed)
	assert.Contains(t, out, "--force")

	_, _, err = env.run(t, "config", "init", "--force")
	require.NoError(t, err)

	out, _, err = env.run(t, "config", "show", "--account", "2")
	require.NoError(t, err)
	assert.Contains(t, out, `"default_account": 2`)
	assert.Contains(t, out, `"preflight": false`)
	assert.Contains(t, out, `"logout_url": "http://127.0.0.1`)
}

func TestCLI_WatchRejectsBadSchedule(t *testing.T) {
	env := setupCLI(t)

	out, _, err := env.run(t, "watch", "--schedule", "whenever")
	assert.ErrorIs(t, err, errFailed)
	assert.Contains(t, out, "invalid keepalive schedule")
}

func TestCLI_Version(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd(&out, &out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "gsbwifi dev\n", out.String())
}
