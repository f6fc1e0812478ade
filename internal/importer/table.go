package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"billcheck/internal/model"
	"billcheck/internal/parser"
)

// ErrUnsupportedFormat 不支持的文件格式
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrEmptyTable 文件中没有表头
var ErrEmptyTable = errors.New("table has no header row")

// Table 表格文件读取结果（第一个 Sheet）
type Table struct {
	Name   string          `json:"name"`
	Sheet  string          `json:"sheet,omitempty"`
	Header []string        `json:"header"`
	Rows   []model.BillRow `json:"rows"`
}

// ReadBill 读取账单文件
func ReadBill(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bill: %w", err)
	}
	defer f.Close()
	return ReadTable(filepath.Base(path), f)
}

// ReadTable 按扩展名读取 xlsx / csv；表头取第一个非空行，结构性空行被跳过
func ReadTable(name string, r io.Reader) (*Table, error) {
	var (
		sheet string
		raw   [][]string
		err   error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		sheet, raw, err = readWorkbook(r)
	case ".csv":
		raw, err = readCSV(r)
	default:
		return nil, fmt.Errorf("%s: %w", name, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	headerIdx := -1
	for i, cells := range raw {
		if !blank(cells) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrEmptyTable)
	}

	header := make([]string, len(raw[headerIdx]))
	for i, h := range raw[headerIdx] {
		header[i] = parser.NormalizeColumnName(h)
	}

	t := &Table{Name: name, Sheet: sheet, Header: header}
	for i := headerIdx + 1; i < len(raw); i++ {
		if blank(raw[i]) {
			continue
		}
		t.Rows = append(t.Rows, model.NewBillRow(i+1, header, raw[i]))
	}
	return t, nil
}

func readWorkbook(r io.Reader) (string, [][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", nil, ErrEmptyTable
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return "", nil, err
	}
	return sheets[0], rows, nil
}

// readCSV 读取 csv；非 UTF-8 内容按 GB18030 解码
func readCSV(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	var src io.Reader = bytes.NewReader(data)
	if !utf8.Valid(data) {
		src = transform.NewReader(src, simplifiedchinese.GB18030.NewDecoder())
	}

	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr.ReadAll()
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
