package emotion

import (
	"bytes"
	"compress/gzip"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// ErrModelNotFound 所有候选路径都不存在模型文件
var ErrModelNotFound = errors.New("emotion model not found")

// DefaultModelPaths 模型文件的固定搜索顺序：容器内挂载点优先，其次本地开发路径
var DefaultModelPaths = []string{
	"/models/emotion_model.gob",
	"/models/face_emotion/emotion_model.gob",
	"./models/emotion_model.gob",
	"./models/face_emotion/emotion_model.gob",
}

// Predictor 持有懒加载的分类网络。权重在首次调用时加载一次，
// 之后所有请求共享只读网络。
type Predictor struct {
	paths []string

	mu  sync.Mutex
	net *Network
}

// NewPredictor 创建预测器。不传入路径时使用 DefaultModelPaths。
func NewPredictor(paths ...string) *Predictor {
	if len(paths) == 0 {
		paths = DefaultModelPaths
	}
	return &Predictor{paths: paths}
}

// network 懒加载网络。加载失败不缓存，之后放入模型文件的调用仍可成功。
func (p *Predictor) network() (*Network, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.net != nil {
		return p.net, nil
	}

	path, err := p.findModelFile()
	if err != nil {
		return nil, err
	}

	net, err := loadNetwork(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load model from %s: %w", path, err)
	}
	if err := net.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model file %s: %w", path, err)
	}

	p.net = net
	return net, nil
}

// findModelFile 按固定顺序返回第一个存在的候选路径
func (p *Predictor) findModelFile() (string, error) {
	for _, path := range p.paths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w, tried: %s", ErrModelNotFound, strings.Join(p.paths, ", "))
}

// loadNetwork 依次尝试各解码策略，全部失败才报错
func loadNetwork(path string) (*Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}

	strategies := []struct {
		name   string
		decode func([]byte) (*Network, error)
	}{
		{"gob", decodeGob},
		{"gzip+gob", decodeGzipGob},
		{"json", decodeJSON},
	}

	var errs []error
	for _, s := range strategies {
		net, err := s.decode(data)
		if err == nil {
			return net, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
	}

	return nil, errors.Join(errs...)
}

func decodeGob(data []byte) (*Network, error) {
	var net Network
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&net); err != nil {
		return nil, err
	}
	return &net, nil
}

func decodeGzipGob(data []byte) (*Network, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var net Network
	if err := gob.NewDecoder(zr).Decode(&net); err != nil {
		return nil, err
	}
	return &net, nil
}

func decodeJSON(data []byte) (*Network, error) {
	var net Network
	if err := json.Unmarshal(data, &net); err != nil {
		return nil, err
	}
	return &net, nil
}

// WriteNetwork 以 gob 序列化网络，供模型导出工具和测试使用
func WriteNetwork(w io.Writer, net *Network) error {
	return gob.NewEncoder(w).Encode(net)
}
