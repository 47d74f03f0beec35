package locale

// 消息键
const (
	MsgInvalidRequest     = "invalid_request"
	MsgValidationFailed   = "validation_failed"
	MsgNotFound           = "not_found"
	MsgDuplicate          = "duplicate"
	MsgServerError        = "server_error"
	MsgUnauthorized       = "unauthorized"
	MsgNotAdmin           = "not_admin"
	MsgInvalidCredentials = "invalid_credentials"
	MsgTooManyRequests    = "too_many_requests"
	MsgAlreadySubscribed  = "already_subscribed"
	MsgSubscribed         = "subscribed"
	MsgUnsubscribed       = "unsubscribed"
	MsgContactSent        = "contact_sent"
	MsgApplicationSent    = "application_sent"
	MsgFeedbackSent       = "feedback_sent"
	MsgSaved              = "saved"
	MsgDeleted            = "deleted"
	MsgLoggedIn           = "logged_in"
	MsgLoggedOut          = "logged_out"
	MsgFileTooLarge       = "file_too_large"
	MsgUnsupportedMedia   = "unsupported_media"
	MsgInvalidSession     = "invalid_session"
	MsgSessionFailed      = "session_failed"
)

type message struct {
	sq string
	en string
}

var catalog = map[string]message{
	MsgInvalidRequest:     {"Kërkesa nuk është e vlefshme", "The request is not valid"},
	MsgValidationFailed:   {"Ju lutem kontrolloni fushat e formularit", "Please check the highlighted fields"},
	MsgNotFound:           {"Të dhënat nuk u gjetën", "The record was not found"},
	MsgDuplicate:          {"Ky rekord ekziston tashmë", "This record already exists"},
	MsgServerError:        {"Ndodhi një gabim. Ju lutem provoni përsëri", "Something went wrong. Please try again"},
	MsgUnauthorized:       {"Duhet të identifikoheni", "Authentication required"},
	MsgNotAdmin:           {"Vetëm administratorët kanë akses", "Only administrators have access"},
	MsgInvalidCredentials: {"Email ose fjalëkalim i gabuar", "Invalid email or password"},
	MsgTooManyRequests:    {"Shumë kërkesa. Provoni përsëri pas pak", "Too many requests. Please try again shortly"},
	MsgAlreadySubscribed:  {"Ky email është tashmë i abonuar", "This email is already subscribed"},
	MsgSubscribed:         {"U abonuat me sukses", "You are now subscribed"},
	MsgUnsubscribed:       {"Abonimi u anulua", "You have been unsubscribed"},
	MsgContactSent:        {"Mesazhi u dërgua me sukses", "Your message has been sent"},
	MsgApplicationSent:    {"Aplikimi u dërgua me sukses", "Your application has been submitted"},
	MsgFeedbackSent:       {"Faleminderit për vlerësimin", "Thank you for your feedback"},
	MsgSaved:              {"Ndryshimet u ruajtën", "Changes saved"},
	MsgDeleted:            {"U fshi me sukses", "Deleted"},
	MsgLoggedIn:           {"Hyrja u krye me sukses", "Signed in"},
	MsgLoggedOut:          {"Dolët nga llogaria", "Signed out"},
	MsgFileTooLarge:       {"Skedari është më i madh se 5MB", "The file is larger than 5MB"},
	MsgUnsupportedMedia:   {"Lejohen vetëm imazhe", "Only image files are allowed"},
	MsgInvalidSession:     {"Sesioni i bisedës nuk është i vlefshëm", "The chat session is not valid"},
	MsgSessionFailed:      {"Sesioni nuk u ruajt", "Could not save the session"},
}

// T returns the message for key in the given language. Unknown keys are returned as is.
func T(lang, key string) string {
	msg, ok := catalog[key]
	if !ok {
		return key
	}
	return Pick(lang, msg.en, msg.sq)
}

// Pick returns the text matching the request language, defaulting to Albanian.
func Pick(lang, english, albanian string) string {
	if NormalizeLanguage(lang) == LanguageEnglish {
		if english != "" {
			return english
		}
		return albanian
	}
	if albanian != "" {
		return albanian
	}
	return english
}
