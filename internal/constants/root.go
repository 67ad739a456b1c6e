package constants

const (
	AppName = "quotly"

	// DefaultKeyringUser is the account name used when storing the database
	// connection string in the OS keyring.
	DefaultKeyringUser = "db-connection"

	// DateFormat is the canonical day key layout.
	DateFormat = "2006-01-02"

	// MaxRangeDays caps ListDaysInRange queries so a calendar view can never
	// issue an unbounded scan.
	MaxRangeDays = 366
)
