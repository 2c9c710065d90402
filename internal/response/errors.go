package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionActive      ErrCode = "SESSION_ALREADY_ACTIVE"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrStudentAccessOnly ErrCode = "STUDENT_ACCESS_ONLY"
	ErrTeacherAccessOnly ErrCode = "TEACHER_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Exam & grading ────────────────────────────────────────────────
	ErrSEBRequired        ErrCode = "SEB_REQUIRED"
	ErrMaxAttemptsReached ErrCode = "MAX_ATTEMPTS_REACHED"
	ErrInvalidPoints      ErrCode = "INVALID_POINTS"
	ErrQuestionNotFound   ErrCode = "QUESTION_NOT_FOUND"
	ErrNotEnrolled        ErrCode = "NOT_ENROLLED"
	ErrNoQuestions        ErrCode = "NO_QUESTIONS"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "E-posta veya şifre hatalı."
	case ErrSessionActive:
		return "Başka bir cihazda zaten oturum açtınız."
	case ErrSessionInvalidated:
		return "Oturumunuz sonlandırıldı. Lütfen tekrar giriş yapın."
	case ErrTokenRequired:
		return "Kimlik doğrulama belirteci gerekli."
	case ErrTokenInvalid:
		return "Kimlik doğrulama belirteci geçersiz."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "Bu kaynağa erişim izniniz yok."
	case ErrStudentAccessOnly:
		return "Bu kaynak yalnızca öğrenciler içindir."
	case ErrTeacherAccessOnly:
		return "Bu kaynak yalnızca öğretmenler içindir."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Doğrulama başarısız. Lütfen girdilerinizi kontrol edin."
	case ErrInvalidID:
		return "Geçersiz ID biçimi."
	case ErrInvalidPayload:
		return "Geçersiz istek gövdesi."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Kaynak bulunamadı."
	case ErrConflict:
		return "Kaynak zaten mevcut."

	// ─── Exam & grading ────────────────────────────────────────────────
	case ErrSEBRequired:
		return "Bu sınav yalnızca güvenli sınav tarayıcısı üzerinden gönderilebilir."
	case ErrMaxAttemptsReached:
		return "Bu sınav için deneme hakkınız doldu."
	case ErrInvalidPoints:
		return "Verilen puan izin verilen aralığın dışında."
	case ErrQuestionNotFound:
		return "Soru bulunamadı."
	case ErrNotEnrolled:
		return "Bu derse kayıtlı değilsiniz."
	case ErrNoQuestions:
		return "Bu sınavda soru bulunmuyor."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Çok fazla istek. Lütfen daha sonra tekrar deneyin."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Sunucu hatası oluştu."
	default:
		return "Beklenmeyen bir hata oluştu."
	}
}
