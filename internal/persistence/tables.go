package persistence

const (
	TableUsers        = "users"
	TableJobs         = "jobs"
	TableApplications = "applications"
	TableSavedJobs    = "saved_jobs"
)

// UserProfileTables lists the profile table names seen across deployments, in lookup order.
var UserProfileTables = []string{"userprofile", "UserProfile"}

// NewMemoryGatewayWithSchema returns a MemoryGateway holding every table and unique key the
// migrations create. The profile table uses its canonical lower-case name.
func NewMemoryGatewayWithSchema() *MemoryGateway {
	g := NewMemoryGateway()
	g.CreateTable(TableUsers, []string{"email"})
	g.CreateTable(UserProfileTables[0], []string{"created_by"})
	g.CreateTable(TableJobs)
	g.CreateTable(TableApplications, []string{"job_id", "candidate_email"})
	g.CreateTable(TableSavedJobs, []string{"user_email", "job_id"})
	return g
}
