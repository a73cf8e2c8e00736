package page

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const portalBase = "https://wifi.gsb.gov.tr/index.html"

func TestDiscoverCandidateURLs_Quota(t *testing.T) {
	markup := `<html><body>
<a href="/kota.html">Kota Bilgilerim</a>
<a href="/profile">Profil</a>
<a href="usage?x=1#top">Usage</a>
<a href="/kota.html#again">Kalan kota</a>
<a href="javascript:void(0)">KALAN KOTA</a>
<a href="mailto:destek@gsb.gov.tr">Paket destek</a>
<form action="/paketler"><button>Paketlerim</button></form>
<span onclick="window.location='/internet/durum'">İnternet durumu</span>
<span onclick="window.location='/other'">Diğer</span>
</body></html>`

	urls := DiscoverCandidateURLs(markup, portalBase, QuotaKeywords)

	assert.Equal(t, []string{
		"https://wifi.gsb.gov.tr/kota.html",
		"https://wifi.gsb.gov.tr/usage?x=1",
		"https://wifi.gsb.gov.tr/paketler",
		"https://wifi.gsb.gov.tr/internet/durum",
	}, urls)
}

func TestDiscoverCandidateURLs_OnclickKeywordInHandler(t *testing.T) {
	markup := `<div onclick="location.href='/kota/detay'">Detay</div>`

	assert.Equal(t, []string{"https://wifi.gsb.gov.tr/kota/detay"}, DiscoverCandidateURLs(markup, portalBase, QuotaKeywords))
}

func TestDiscoverCandidateURLs_TurkishCasing(t *testing.T) {
	markup := `<a href="/a">ÇIKIŞ</a><a href="/b">GÜVENLİ ÇIKIŞ</a>`

	assert.Equal(t, []string{
		"https://wifi.gsb.gov.tr/a",
		"https://wifi.gsb.gov.tr/b",
	}, DiscoverCandidateURLs(markup, portalBase, LogoutKeywords))
}

func TestDiscoverCandidateURLs_None(t *testing.T) {
	assert.Empty(t, DiscoverCandidateURLs(`<p>nothing here</p>`, portalBase, QuotaKeywords))
	assert.Empty(t, DiscoverCandidateURLs("", portalBase, LogoutKeywords))
}

func TestDiscoverLogoutActions(t *testing.T) {
	markup := `<html><body>
<a href="/logout?from=menu">Çıkış Yap</a>
<form id="mainForm" action="/index.xhtml" method="post">
  <input type="hidden" name="mainForm" value="mainForm">
  <input type="hidden" name="javax.faces.ViewState" value="7:8">
  <button name="mainForm:cikisButton" value="1">Güvenli Çıkış</button>
</form>
<form action="/session/end" method="get">
  <input type="hidden" name="token" value="abc">
  <span>Oturumu kapat</span>
</form>
<a href="/logout?from=menu">Logout</a>
<li onclick="doLogout('/signout')">Sign out</li>
</body></html>`

	actions := DiscoverLogoutActions(markup, portalBase)

	require.Len(t, actions, 5)
	assert.Equal(t, LogoutAction{URL: "https://wifi.gsb.gov.tr/logout?from=menu", Method: "GET", Payload: FormFields{}}, actions[0])
	assert.Equal(t, LogoutAction{
		URL:    "https://wifi.gsb.gov.tr/index.xhtml",
		Method: "POST",
		Payload: FormFields{
			"mainForm":              "mainForm",
			"javax.faces.ViewState": "7:8",
			"mainForm:cikisButton":  "1",
		},
	}, actions[1])
	assert.Equal(t, LogoutAction{
		URL:    "https://wifi.gsb.gov.tr/index.xhtml",
		Method: "POST",
		Payload: FormFields{
			"mainForm":              "mainForm",
			"javax.faces.ViewState": "7:8",
		},
	}, actions[2], "form mentioning logout is also tried without the button field")
	assert.Equal(t, LogoutAction{URL: "https://wifi.gsb.gov.tr/session/end", Method: "GET", Payload: FormFields{"token": "abc"}}, actions[3])
	assert.Equal(t, LogoutAction{URL: "https://wifi.gsb.gov.tr/signout", Method: "GET", Payload: FormFields{}}, actions[4])
}

func TestDiscoverLogoutActions_ButtonOutsideForm(t *testing.T) {
	assert.Empty(t, DiscoverLogoutActions(`<button>Çıkış</button>`, portalBase))
}

func TestDiscoverLogoutActions_FormWithoutMethodDefaultsToPost(t *testing.T) {
	actions := DiscoverLogoutActions(`<form action="/cikis"><input type="submit" value="Çıkış"></form>`, portalBase)

	require.Len(t, actions, 1)
	assert.Equal(t, "POST", actions[0].Method)
	assert.Equal(t, "https://wifi.gsb.gov.tr/cikis", actions[0].URL)
}
