package dto

type PluginInfo struct {
	Name         string
	Version      string
	Enabled      bool
	Binary       string
	Capabilities []string
}

type DoctorResult struct {
	Name            string
	ChecksumValid   bool
	BinaryReachable bool
	LifecycleOK     bool
	Error           string
}

type CommandInfo struct {
	ID              string
	Title           string
	Description     string
	Kind            string
	InputSchemaJSON string
	TimeoutMS       int
}

type ExecuteInput struct {
	PluginName string
	CommandID  string
	InputJSON  string
	UploadID   string
	DataPath   string
	Cwd        string
	Env        map[string]string
}

type ExecuteOutput struct {
	PluginName string
	CommandID  string
	Stdout     string
	Stderr     string
	OutputJSON string
	ExitCode   int
}

type DetectInput struct {
	PluginName  string
	Series      []float64
	IntervalMin float64
}

type DetectOutput struct {
	PluginName string
	Detector   string
	Mask       []bool
}
