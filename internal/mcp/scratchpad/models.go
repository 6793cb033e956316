package scratchpad

// Workflow is a named, optionally project-scoped container of scratchpads.
type Workflow struct {
	ID              string `gorm:"primaryKey;type:text"`
	Name            string `gorm:"type:text;not null"`
	Description     *string
	ProjectScope    *string `gorm:"index:idx_workflows_scope_updated,priority:1"`
	IsActive        bool    `gorm:"not null"`
	ScratchpadCount int     `gorm:"not null"`
	CreatedAt       int64   `gorm:"not null;autoCreateTime:false"`
	UpdatedAt       int64   `gorm:"not null;autoUpdateTime:false;index:idx_workflows_scope_updated,priority:2"`
}

// TableName returns the database table name.
func (Workflow) TableName() string {
	return "workflows"
}

// Scratchpad is a titled text document owned by exactly one workflow.
type Scratchpad struct {
	ID         string `gorm:"primaryKey;type:text"`
	WorkflowID string `gorm:"type:text;not null;index:idx_scratchpads_workflow_updated,priority:1"`
	Title      string `gorm:"type:text;not null"`
	Content    string `gorm:"type:text;not null"`
	SizeBytes  int64  `gorm:"not null"`
	CreatedAt  int64  `gorm:"not null;autoCreateTime:false"`
	UpdatedAt  int64  `gorm:"not null;autoUpdateTime:false;index:idx_scratchpads_workflow_updated,priority:2"`
}

// TableName returns the database table name.
func (Scratchpad) TableName() string {
	return "scratchpads"
}

// SchemaVersion records an applied schema migration.
type SchemaVersion struct {
	Version   int   `gorm:"primaryKey;autoIncrement:false"`
	AppliedAt int64 `gorm:"not null"`
}

// TableName returns the database table name.
func (SchemaVersion) TableName() string {
	return "schema_versions"
}
