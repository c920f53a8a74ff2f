package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Create process_definitions table
			CREATE TABLE process_definitions (
				id UUID PRIMARY KEY,
				name VARCHAR(255) NOT NULL UNIQUE,
				description TEXT NOT NULL DEFAULT '',
				process_id VARCHAR(255) NOT NULL,
				status VARCHAR(50) NOT NULL CHECK (status IN ('draft', 'published', 'archived')),
				created_by VARCHAR(255),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_process_definitions_status ON process_definitions(status);
			CREATE INDEX idx_process_definitions_created_at ON process_definitions(created_at);

			-- Create definition_versions table
			CREATE TABLE definition_versions (
				id UUID PRIMARY KEY,
				definition_id UUID NOT NULL REFERENCES process_definitions(id) ON DELETE CASCADE,
				version INTEGER NOT NULL,
				document TEXT NOT NULL,
				change_notes TEXT NOT NULL DEFAULT '',
				is_active BOOLEAN NOT NULL DEFAULT FALSE,
				created_by VARCHAR(255),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				UNIQUE (definition_id, version)
			);

			CREATE INDEX idx_definition_versions_definition_id ON definition_versions(definition_id);

			-- At most one active version per definition
			CREATE UNIQUE INDEX idx_definition_versions_active
				ON definition_versions(definition_id) WHERE is_active;
		`,
		2: `
			-- Create projects table
			CREATE TABLE projects (
				id UUID PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				current_group VARCHAR(255),
				current_item VARCHAR(255),
				execution_state_id UUID,
				definition_id UUID REFERENCES process_definitions(id),
				version_id UUID REFERENCES definition_versions(id),
				status VARCHAR(50) NOT NULL CHECK (status IN ('active', 'completed', 'cancelled')),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_projects_definition_id ON projects(definition_id);
			CREATE INDEX idx_projects_status ON projects(status);
			CREATE INDEX idx_projects_created_at ON projects(created_at);

			-- Create execution_states table
			CREATE TABLE execution_states (
				id UUID PRIMARY KEY,
				project_id UUID NOT NULL UNIQUE REFERENCES projects(id) ON DELETE CASCADE,
				snapshot BYTEA NOT NULL,
				current_task_id VARCHAR(255),
				status VARCHAR(50) NOT NULL CHECK (status IN ('running', 'completed')),
				revision BIGINT NOT NULL DEFAULT 0,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);
		`,
		3: `
			-- Create workflow_history table (append only)
			CREATE TABLE workflow_history (
				id UUID PRIMARY KEY,
				project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
				from_group VARCHAR(255),
				to_group VARCHAR(255),
				action VARCHAR(50) NOT NULL,
				reason TEXT,
				decision_maker_id VARCHAR(255),
				decision_maker_name VARCHAR(255),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_workflow_history_project_id ON workflow_history(project_id);
			CREATE INDEX idx_workflow_history_created_at ON workflow_history(created_at);

			-- Create project_comments table
			CREATE TABLE project_comments (
				id UUID PRIMARY KEY,
				project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
				workflow_group VARCHAR(255) NOT NULL,
				workflow_item VARCHAR(255),
				user_id VARCHAR(255),
				user_name VARCHAR(255),
				content TEXT NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_project_comments_project_id ON project_comments(project_id);
			CREATE INDEX idx_project_comments_group ON project_comments(workflow_group);
		`,
	}
}
