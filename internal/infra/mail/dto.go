package mail

type ConversionNoticeData struct {
	LeadName         string
	OrganizationName string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}
