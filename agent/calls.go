package agent

// Call is one of the fixed set of tool invocations the model may choose.
// The set is closed: only the argument types in this file implement it.
type Call interface {
	ToolName() string
	isCall()
}

// Tool names as advertised to the model.
const (
	ToolSearchFiles     = "searchFiles"
	ToolGetMetadata     = "getMetadata"
	ToolReadFile        = "readFile"
	ToolWriteFile       = "writeFile"
	ToolDeleteFile      = "deleteFile"
	ToolFindLatestFile  = "findLatestFile"
	ToolMoveFileByName  = "moveFileByName"
	ToolCreateEmptyFile = "createEmptyFile"
)

type SearchFiles struct {
	Query string `json:"query" jsonschema:"Partial or full name of the file to search for"`
}

type GetMetadata struct {
	FilePath string `json:"file_path" jsonschema:"Full file path"`
}

type ReadFile struct {
	FilePath string `json:"file_path" jsonschema:"Full file path"`
}

type WriteFile struct {
	FilePath string `json:"file_path" jsonschema:"Path of the file to write, may start with Downloads or Desktop"`
	Content  string `json:"content" jsonschema:"Text to write"`
	Append   bool   `json:"append,omitempty" jsonschema:"Append instead of overwriting"`
}

// DeleteFile without Confirm only asks for confirmation.
type DeleteFile struct {
	FilePath string  `json:"file_path" jsonschema:"Path of the file or directory to delete"`
	Confirm  *string `json:"confirm,omitempty" jsonschema:"User confirmation input like 'yes'"`
}

type FindLatestFile struct {
	NameQuery string `json:"name_query" jsonschema:"Keyword to match in the file name, like 'resume' or 'report'"`
}

type MoveFileByName struct {
	Filename    string `json:"filename" jsonschema:"Partial or full name of the file to move"`
	Destination string `json:"destination,omitempty" jsonschema:"Target folder name like Desktop or Documents"`
}

type CreateEmptyFile struct {
	FilePath string `json:"file_path" jsonschema:"Path of the file to create"`
}

func (SearchFiles) ToolName() string     { return ToolSearchFiles }
func (GetMetadata) ToolName() string     { return ToolGetMetadata }
func (ReadFile) ToolName() string        { return ToolReadFile }
func (WriteFile) ToolName() string       { return ToolWriteFile }
func (DeleteFile) ToolName() string      { return ToolDeleteFile }
func (FindLatestFile) ToolName() string  { return ToolFindLatestFile }
func (MoveFileByName) ToolName() string  { return ToolMoveFileByName }
func (CreateEmptyFile) ToolName() string { return ToolCreateEmptyFile }

func (SearchFiles) isCall()     {}
func (GetMetadata) isCall()     {}
func (ReadFile) isCall()        {}
func (WriteFile) isCall()       {}
func (DeleteFile) isCall()      {}
func (FindLatestFile) isCall()  {}
func (MoveFileByName) isCall()  {}
func (CreateEmptyFile) isCall() {}
