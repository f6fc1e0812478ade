package importer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"billcheck/internal/logger"
	"billcheck/internal/model"
)

// Coordinator 输入协调器：并发读取一次核对所需的账单与规则文件
type Coordinator struct {
	base model.RuleSet
}

// NewCoordinator 创建输入协调器；base 为未被规则文件覆盖时使用的规则
func NewCoordinator(base model.RuleSet) *Coordinator {
	return &Coordinator{base: base.Clone()}
}

// LoadOptions 读取选项
type LoadOptions struct {
	BillPath  string
	RuleFiles map[model.RuleKind]string // 可选，按类别覆盖基础规则
}

// Inputs 一次核对的全部输入
type Inputs struct {
	Bill    *Table                    `json:"bill"`
	Rules   model.RuleSet             `json:"rules"`
	Sources map[model.RuleKind]string `json:"sources"` // 规则来源文件
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"`    // start/file_done/done/error
	Message   string      `json:"message"` // 事件消息
	Data      interface{} `json:"data"`    // 附加数据
	Timestamp time.Time   `json:"timestamp"`
}

// Import 执行读取，返回进度通道；最后一个事件为 done（Data 为 *Inputs）或 error
func (c *Coordinator) Import(ctx context.Context, opts LoadOptions) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 16)

	go func() {
		defer close(progressChan)
		c.doImport(ctx, opts, progressChan)
	}()

	return progressChan
}

// Load 同步读取，进度事件写入日志
func (c *Coordinator) Load(ctx context.Context, opts LoadOptions) (*Inputs, error) {
	var (
		inputs *Inputs
		err    error
	)
	for evt := range c.Import(ctx, opts) {
		switch evt.Type {
		case "done":
			inputs, _ = evt.Data.(*Inputs)
		case "error":
			err = errors.New(evt.Message)
			if cause, ok := evt.Data.(error); ok {
				err = cause
			}
		default:
			logger.Info(ctx, evt.Message)
		}
	}
	if err != nil {
		return nil, err
	}
	if inputs == nil {
		return nil, fmt.Errorf("load inputs: %w", context.Cause(ctx))
	}
	return inputs, nil
}

func (c *Coordinator) doImport(ctx context.Context, opts LoadOptions, progressChan chan ProgressEvent) {
	startTime := time.Now()

	c.sendProgress(ctx, progressChan, ProgressEvent{
		Type:    "start",
		Message: "开始读取核对输入",
		Data: map[string]interface{}{
			"bill":       filepath.Base(opts.BillPath),
			"rule_files": len(opts.RuleFiles),
		},
		Timestamp: time.Now(),
	})

	kinds := sortedKinds(opts.RuleFiles)
	for _, kind := range kinds {
		if !model.ValidRuleKind(kind) {
			err := fmt.Errorf("unknown rule kind: %q", kind)
			c.sendProgress(ctx, progressChan, ProgressEvent{
				Type:      "error",
				Message:   fmt.Sprintf("未知规则类别: %s", kind),
				Data:      err,
				Timestamp: time.Now(),
			})
			return
		}
	}

	inputs := &Inputs{
		Rules:   c.base.Clone(),
		Sources: map[model.RuleKind]string{},
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		bill, err := ReadBill(opts.BillPath)
		if err != nil {
			return err
		}
		mu.Lock()
		inputs.Bill = bill
		mu.Unlock()
		c.sendProgress(gctx, progressChan, ProgressEvent{
			Type:    "file_done",
			Message: fmt.Sprintf("账单 \"%s\" 读取完成: %d 行", bill.Name, len(bill.Rows)),
			Data: map[string]interface{}{
				"file": bill.Name,
				"rows": len(bill.Rows),
			},
			Timestamp: time.Now(),
		})
		return nil
	})

	for _, kind := range kinds {
		kind, path := kind, opts.RuleFiles[kind]
		g.Go(func() error {
			rs, err := ReadRuleFile(kind, path)
			if err != nil {
				return err
			}
			if err := gctx.Err(); err != nil {
				return err
			}
			mu.Lock()
			inputs.Rules.Replace(kind, rs)
			inputs.Sources[kind] = path
			mu.Unlock()
			c.sendProgress(gctx, progressChan, ProgressEvent{
				Type:    "file_done",
				Message: fmt.Sprintf("规则 \"%s\" 读取完成: %d 条", filepath.Base(path), rs.Count(kind)),
				Data: map[string]interface{}{
					"file":  filepath.Base(path),
					"kind":  kind,
					"count": rs.Count(kind),
				},
				Timestamp: time.Now(),
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		c.sendProgress(ctx, progressChan, ProgressEvent{
			Type:      "error",
			Message:   fmt.Sprintf("读取失败: %v", err),
			Data:      err,
			Timestamp: time.Now(),
		})
		return
	}

	c.sendProgress(ctx, progressChan, ProgressEvent{
		Type:      "done",
		Message:   fmt.Sprintf("读取完成，耗时 %s", time.Since(startTime).Round(time.Millisecond)),
		Data:      inputs,
		Timestamp: time.Now(),
	})
}

// sendProgress 发送进度事件；ctx 取消后放弃发送
func (c *Coordinator) sendProgress(ctx context.Context, ch chan ProgressEvent, event ProgressEvent) {
	select {
	case ch <- event:
	case <-ctx.Done():
	}
}

func sortedKinds(files map[model.RuleKind]string) []model.RuleKind {
	kinds := make([]model.RuleKind, 0, len(files))
	for k, path := range files {
		if path == "" {
			continue
		}
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
