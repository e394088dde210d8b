package config

// Map of job names to job functions
type CronJob struct {
	Schedule string
	Job      func(...string)
}

// CronJobs holds statically configured jobs. Shipped jobs live in
// cron/jobs and self-register through cron.Register, which keeps this
// package free of job imports.
var CronJobs = map[string]CronJob{
	// Add more jobs here
}
