package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden       ErrCode = "FORBIDDEN"
	ErrIDORBlocked     ErrCode = "IDOR_BLOCKED"
	ErrAdminAccessOnly ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation ErrCode = "VALIDATION_ERROR"
	ErrInvalidID  ErrCode = "INVALID_ID"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Catalog ───────────────────────────────────────────────────────
	ErrExamNotSeeded        ErrCode = "EXAM_NOT_SEEDED"
	ErrInvalidChoices       ErrCode = "INVALID_CHOICES"
	ErrInvalidCorrectChoice ErrCode = "INVALID_CORRECT_CHOICE"
	ErrTestQuestion         ErrCode = "TEST_QUESTION"

	// ─── Quiz ──────────────────────────────────────────────────────────
	ErrInvalidChoice         ErrCode = "INVALID_CHOICE"
	ErrQuestionTopicMismatch ErrCode = "QUESTION_TOPIC_MISMATCH"
	ErrAttemptMismatch       ErrCode = "ATTEMPT_MISMATCH"
	ErrEmptyAttempt          ErrCode = "EMPTY_ATTEMPT"
	ErrAttemptCompleted      ErrCode = "ATTEMPT_COMPLETED"

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
		return "Email o contraseña incorrectos."
	case ErrSessionInvalidated:
		return "Tu sesión ha expirado. Inicia sesión nuevamente."
	case ErrTokenRequired:
		return "Se requiere un token de autenticación."
	case ErrTokenInvalid:
		return "El token de autenticación no es válido."
	case ErrTokenExpired:
		return "El token de autenticación ha expirado."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "No tienes permiso para acceder a este recurso."
	case ErrIDORBlocked:
		return "user_id no coincide con el token."
	case ErrAdminAccessOnly:
		return "Este recurso es solo para administradores."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "La validación falló. Revisa los datos enviados."
	case ErrInvalidID:
		return "Formato de ID no válido."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Recurso no encontrado."

	// ─── Catalog ───────────────────────────────────────────────────────
	case ErrExamNotSeeded:
		return "Examen no inicializado. Ejecuta el seed del catálogo."
	case ErrInvalidChoices:
		return "Las alternativas deben tener labels únicos (A/B/C/D)."
	case ErrInvalidCorrectChoice:
		return "correct_choice debe existir dentro de choices."
	case ErrTestQuestion:
		return "Preguntas marcadas como [TEST] no están permitidas."

	// ─── Quiz ──────────────────────────────────────────────────────────
	case ErrInvalidChoice:
		return "La alternativa seleccionada no pertenece a esta pregunta."
	case ErrQuestionTopicMismatch:
		return "La pregunta no pertenece al subject/topic indicado."
	case ErrAttemptMismatch:
		return "attempt_id no coincide con subject/topic del request."
	case ErrEmptyAttempt:
		return "No se puede completar el tema sin responder al menos una pregunta."
	case ErrAttemptCompleted:
		return "El intento ya fue completado."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Demasiadas solicitudes. Intenta nuevamente más tarde."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Ocurrió un error interno del servidor."
	default:
		return "Ocurrió un error inesperado."
	}
}
