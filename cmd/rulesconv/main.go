// rulesconv 将 xlsx / csv 规则表转换为 config.toml 可引用的 toml 规则文件
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"

	"billcheck/internal/importer"
	"billcheck/internal/model"
)

var (
	kind = pflag.StringP("kind", "k", "", "规则类别 standard|contract|packaging|insurance")
	out  = pflag.StringP("out", "o", "", "输出文件 (默认标准输出)")
)

func main() {
	pflag.Parse()
	if *kind == "" || pflag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: rulesconv --kind <kind> [--out rules.toml] <rules.xlsx>")
		os.Exit(2)
	}

	if err := run(model.RuleKind(*kind), pflag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "转换失败: %v\n", err)
		os.Exit(1)
	}
}

func run(k model.RuleKind, path string) error {
	if !model.ValidRuleKind(k) {
		return fmt.Errorf("unknown rule kind: %q", k)
	}

	rs, err := importer.ReadRuleFile(k, path)
	if err != nil {
		return err
	}
	if rs.Count(k) == 0 {
		return fmt.Errorf("%s: no %s rules found", path, k)
	}
	if err := rs.Validate(k); err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	if err := toml.NewEncoder(w).Encode(rs); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "%s: %d 条 %s 规则\n", path, rs.Count(k), k)
	return nil
}
