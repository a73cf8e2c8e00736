package portal

// User-facing texts. The portal and its users are Turkish-speaking.
const (
	MsgLoginPageStatus    = "Giriş sayfası alınamadı (HTTP %d)."
	MsgLoginPageError     = "Giriş sayfası alınamadı: %v"
	MsgLoginRequestStatus = "Giriş isteği başarısız (HTTP %d)."
	MsgLoginRequestError  = "Giriş isteği gönderilemedi: %v"
	MsgAlreadyLoggedIn    = "Zaten giriş yapılmış görünüyor."
	MsgLoginSucceeded     = "Giriş başarılı (≈ %.1fs)."
	MsgWarningPrefix      = "Not: %s"
	MsgLoginMaxAttempts   = "Giriş yapılamadı: Maksimum deneme sayısına ulaşıldı."
	MsgNoCredentials      = "Kullanıcı bilgisi bulunamadı."
	MsgCredentialsError   = "Kullanıcı bilgisi okunamadı: %v"
	MsgSessionError       = "Bağlantı oturumu oluşturulamadı: %v"

	MsgLogoutSucceeded    = "Çıkış başarılı."
	MsgLogoutDiagnostic   = "%s %s -> %d | final: %s"
	MsgLogoutRequestError = "%s %s -> hata: %v"
	MsgNoLogoutAction     = "Çıkış aksiyonu bulunamadı."
	MsgLogoutFailed       = "Çıkış yapılamadı: %s"
	MsgLogoutMaxAttempts  = "Çıkış yapılamadı: Maksimum deneme sayısına ulaşıldı."

	MsgStatusLoggedIn   = "Oturum açık"
	MsgStatusLoggedOut  = "Oturum kapalı"
	MsgStatusPageStatus = "Portal erişimi başarısız (HTTP %d)."
	MsgStatusPageError  = "Portal erişilemiyor: %v"

	MsgCancelled  = "İşlem iptal edildi."
	MsgTimeout    = "İşlem zaman aşımına uğradı."
	MsgUnexpected = "Beklenmeyen hata: %v"
)
