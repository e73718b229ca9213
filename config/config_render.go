package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/0xPolygon/cdk-l2node/log"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/valyala/fasttemplate"
)

const (
	startTag = "{{"
	endTag   = "}}"
)

var (
	ErrCycleVars                 = errors.New("cycle vars")
	ErrMissingVars               = errors.New("missing vars")
	ErrUnsupportedConfigFileType = errors.New("unsupported config file type")

	// A = {{B}} is not valid TOML, it is turned into A = "{{B:int}}" while parsing
	unquotedVarRe = regexp.MustCompile(`=\s*\{\{([^}:]+)\}\}`)
	quotedVarRe   = regexp.MustCompile(`=\s*\"\{\{([^}:]+:int)\}\}\"`)
	typeMarkRe    = regexp.MustCompile(`\{\{([^}:]+:int)\}\}`)
)

type FileData struct {
	Name    string
	Content string
}

// ConfigRender merges TOML files, later files overriding earlier ones, and
// resolves the {{Var}} references of the result. A var is looked up first in
// the environment as <EnvironmentPrefix>_<Var> and then in the merged config.
type ConfigRender struct {
	FilesData         []FileData
	LookupEnvFunc     func(key string) (string, bool)
	EnvironmentPrefix string
}

func NewConfigRender(filesData []FileData, environmentPrefix string) *ConfigRender {
	return &ConfigRender{
		FilesData:         filesData,
		LookupEnvFunc:     os.LookupEnv,
		EnvironmentPrefix: environmentPrefix,
	}
}

func (c *ConfigRender) Render() (string, error) {
	merged, err := c.Merge()
	if err != nil {
		return "", fmt.Errorf("fail to merge files. Err: %w", err)
	}
	return c.ResolveVars(merged)
}

// Merge returns the TOML result of loading every file in order. Vars are kept
// unresolved.
func (c *ConfigRender) Merge() (string, error) {
	k := koanf.New(".")
	for _, data := range c.FilesData {
		content := quoteVars(data.Content)
		if err := k.Load(rawbytes.Provider([]byte(content)), toml.Parser()); err != nil {
			log.Errorf("error loading file %s. Err:%v.FileData: %v", data.Name, err, content)
			return "", fmt.Errorf("fail to load converted template %s to toml. Err: %w", data.Name, err)
		}
	}
	marshaled, err := k.Marshal(toml.Parser())
	if err != nil {
		return "", fmt.Errorf("fail to marshal to toml. Err: %w", err)
	}
	return unquoteVars(string(marshaled)), nil
}

func (c *ConfigRender) ResolveVars(fullConfigData string) (string, error) {
	tpl, values, err := c.readTemplate(fullConfigData)
	if err != nil {
		return "", err
	}
	// one pass: vars pointing to plain values get resolved, vars pointing to
	// other vars are left as {{Var}}
	rendered := removeTypeMarks(c.execute(tpl, values))
	if missing := c.unresolvedVars(tpl, values); len(missing) > 0 {
		return rendered, fmt.Errorf("missing vars: %v. Err: %w", missing, ErrMissingVars)
	}
	resolved, err := c.ResolveCycle(rendered)
	if err != nil {
		return fullConfigData, err
	}
	return resolved, nil
}

// ResolveCycle keeps resolving the chained vars until none is left. A pass
// that does not reduce the pending vars means they reference each other.
func (c *ConfigRender) ResolveCycle(partiallyResolved string) (string, error) {
	data := unquoteVars(partiallyResolved)
	pending := c.GetVars(data)
	if len(pending) == 0 {
		return partiallyResolved, nil
	}
	log.Debugf("ResolveCycle: pending vars: %v", pending)
	for len(pending) > 0 {
		previous := len(pending)
		tpl, values, err := c.readTemplate(data)
		if err != nil {
			log.Errorf("resolveCycle: fails reading template. Err: %v. Data:%s", err, data)
			return "", fmt.Errorf("fails to read template ResolveCycle. Err: %w", err)
		}
		data = removeTypeMarks(unquoteVars(c.execute(tpl, values)))
		pending = c.GetVars(data)
		if len(pending) == previous {
			return partiallyResolved, fmt.Errorf("not resolved cycle vars: %v. Err: %w", pending, ErrCycleVars)
		}
	}
	return data, nil
}

// GetVars returns the vars referenced in configData
func (c *ConfigRender) GetVars(configData string) []string {
	tpl, err := fasttemplate.NewTemplate(configData, startTag, endTag)
	if err != nil {
		return []string{}
	}
	var vars []string
	tpl.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		vars = append(vars, tag)
		return 0, nil
	})
	return vars
}

// readTemplate parses data, whose vars must be unquoted (A={{B}}), both as a
// template and as TOML values.
func (c *ConfigRender) readTemplate(data string) (*fasttemplate.Template, map[string]interface{}, error) {
	tpl, err := fasttemplate.NewTemplate(data, startTag, endTag)
	if err != nil {
		return nil, nil, fmt.Errorf("fail to load template. Err:%w", err)
	}
	quoted := quoteVars(data)
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider([]byte(quoted)), toml.Parser()); err != nil {
		return nil, nil, fmt.Errorf("error parsing template values koanf.Load.Content: %s. Err: %w", quoted, err)
	}
	return tpl, k.All(), nil
}

func (c *ConfigRender) execute(tpl *fasttemplate.Template, values map[string]interface{}) string {
	return tpl.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		if v, ok := c.lookupEnv(tag); ok {
			return w.Write([]byte(v))
		}
		if v, ok := values[tag]; ok {
			return w.Write([]byte(fmt.Sprintf("%v", v)))
		}
		return w.Write([]byte(startTag + tag + endTag))
	})
}

func (c *ConfigRender) unresolvedVars(tpl *fasttemplate.Template, values map[string]interface{}) []string {
	var unresolved []string
	seen := make(map[string]struct{})
	tpl.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		if _, ok := c.lookupEnv(tag); ok {
			return 0, nil
		}
		if _, ok := values[tag]; ok {
			return 0, nil
		}
		if _, ok := seen[tag]; !ok {
			seen[tag] = struct{}{}
			unresolved = append(unresolved, tag)
		}
		return 0, nil
	})
	return unresolved
}

func (c *ConfigRender) lookupEnv(tag string) (string, bool) {
	return c.LookupEnvFunc(c.EnvironmentPrefix + "_" + strings.ReplaceAll(tag, ".", "_"))
}

func quoteVars(data string) string {
	return unquotedVarRe.ReplaceAllString(data, `= "{{${1}:int}}"`)
}

func unquoteVars(data string) string {
	return quotedVarRe.ReplaceAllStringFunc(data, func(match string) string {
		submatch := quotedVarRe.FindStringSubmatch(match)
		if len(submatch) > 1 {
			return "= " + startTag + strings.Split(submatch[1], ":")[0] + endTag
		}
		return match
	})
}

func removeTypeMarks(data string) string {
	return typeMarkRe.ReplaceAllStringFunc(data, func(match string) string {
		submatch := typeMarkRe.FindStringSubmatch(match)
		if len(submatch) > 1 {
			return startTag + strings.Split(submatch[1], ":")[0] + endTag
		}
		return match
	})
}

func convertFileToToml(fileData string, fileType string) (string, error) {
	switch strings.ToLower(fileType) {
	case "json":
		k := koanf.New(".")
		if err := k.Load(rawbytes.Provider([]byte(fileData)), json.Parser()); err != nil {
			return fileData, fmt.Errorf("error loading json file. Err: %w", err)
		}
		tomlData, err := toml.Parser().Marshal(k.Raw())
		if err != nil {
			return fileData, fmt.Errorf("error converting json to toml. Err: %w", err)
		}
		return string(tomlData), nil
	case "yml", "yaml", "ini":
		return fileData, fmt.Errorf("cant convert from %s to TOML. Err: %w", fileType, ErrUnsupportedConfigFileType)
	default:
		log.Warnf("filetype %s unknown, assuming is a TOML file", fileType)
		return fileData, nil
	}
}
