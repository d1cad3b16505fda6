package emotion

import (
	"fmt"
	"math"
)

// 层类型
const (
	layerConv    = "conv"
	layerMaxPool = "maxpool"
	layerFlatten = "flatten"
	layerDense   = "dense"
)

// 激活函数
const (
	activationReLU    = "relu"
	activationSoftmax = "softmax"
)

// Network 顺序执行的分类网络，权重随模型文件一起序列化。
// 加载后只读，可被并发推理调用共享。
type Network struct {
	Labels []string    `json:"labels"`
	Layers []LayerSpec `json:"layers"`
}

// LayerSpec 单层的结构和权重。卷积层为 same-padding、步长 1，
// 权重布局 (ky, kx, in, out)；全连接层权重布局 (in, out)。
type LayerSpec struct {
	Kind        string    `json:"kind"`
	Activation  string    `json:"activation,omitempty"`
	KernelSize  int       `json:"kernel_size,omitempty"`
	InChannels  int       `json:"in_channels,omitempty"`
	OutChannels int       `json:"out_channels,omitempty"`
	InputDim    int       `json:"input_dim,omitempty"`
	OutputDim   int       `json:"output_dim,omitempty"`
	Weights     []float64 `json:"weights,omitempty"`
	Bias        []float64 `json:"bias,omitempty"`
}

// tensor HWC 布局的特征图
type tensor struct {
	h, w, c int
	data    []float64
}

func newTensor(h, w, c int) *tensor {
	return &tensor{h: h, w: w, c: c, data: make([]float64, h*w*c)}
}

func (t *tensor) at(y, x, ch int) float64 {
	return t.data[(y*t.w+x)*t.c+ch]
}

// Validate 检查各层权重尺寸是否自洽
func (n *Network) Validate() error {
	if len(n.Labels) == 0 {
		return fmt.Errorf("model file carries no labels")
	}
	for i, layer := range n.Layers {
		if err := layer.validate(); err != nil {
			return fmt.Errorf("layer %d (%s): %w", i, layer.Kind, err)
		}
	}
	if len(n.Layers) == 0 {
		return fmt.Errorf("model file carries no layers")
	}
	last := n.Layers[len(n.Layers)-1]
	if last.Kind == layerDense && last.OutputDim != len(n.Labels) {
		return fmt.Errorf("final dense layer outputs %d values for %d labels", last.OutputDim, len(n.Labels))
	}
	return nil
}

func (l *LayerSpec) validate() error {
	switch l.Kind {
	case layerConv:
		if l.KernelSize <= 0 || l.InChannels <= 0 || l.OutChannels <= 0 {
			return fmt.Errorf("invalid dimensions %dx%d kernel %d", l.InChannels, l.OutChannels, l.KernelSize)
		}
		want := l.KernelSize * l.KernelSize * l.InChannels * l.OutChannels
		if len(l.Weights) != want {
			return fmt.Errorf("expected %d weights, got %d", want, len(l.Weights))
		}
		if len(l.Bias) != l.OutChannels {
			return fmt.Errorf("expected %d bias values, got %d", l.OutChannels, len(l.Bias))
		}
	case layerDense:
		if l.InputDim <= 0 || l.OutputDim <= 0 {
			return fmt.Errorf("invalid dimensions %d -> %d", l.InputDim, l.OutputDim)
		}
		if len(l.Weights) != l.InputDim*l.OutputDim {
			return fmt.Errorf("expected %d weights, got %d", l.InputDim*l.OutputDim, len(l.Weights))
		}
		if len(l.Bias) != l.OutputDim {
			return fmt.Errorf("expected %d bias values, got %d", l.OutputDim, len(l.Bias))
		}
	case layerMaxPool, layerFlatten:
		// 无权重
	default:
		return fmt.Errorf("unknown layer kind %q", l.Kind)
	}
	return nil
}

// forward 执行一次前向传播，返回最后一层的输出向量
func (n *Network) forward(in *tensor) ([]float64, error) {
	t := in
	for i := range n.Layers {
		layer := &n.Layers[i]

		var err error
		switch layer.Kind {
		case layerConv:
			t, err = layer.conv(t)
		case layerMaxPool:
			t = maxPool(t)
		case layerFlatten:
			t = &tensor{h: 1, w: 1, c: len(t.data), data: t.data}
		case layerDense:
			t, err = layer.dense(t)
		default:
			err = fmt.Errorf("unknown layer kind %q", layer.Kind)
		}
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}

		applyActivation(layer.Activation, t.data)
	}
	return t.data, nil
}

func (l *LayerSpec) conv(in *tensor) (*tensor, error) {
	if in.c != l.InChannels {
		return nil, fmt.Errorf("expected %d input channels, got %d", l.InChannels, in.c)
	}

	k := l.KernelSize
	pad := k / 2
	out := newTensor(in.h, in.w, l.OutChannels)

	for y := 0; y < in.h; y++ {
		for x := 0; x < in.w; x++ {
			base := (y*in.w + x) * l.OutChannels
			for oc := 0; oc < l.OutChannels; oc++ {
				sum := l.Bias[oc]
				for ky := 0; ky < k; ky++ {
					sy := y + ky - pad
					if sy < 0 || sy >= in.h {
						continue
					}
					for kx := 0; kx < k; kx++ {
						sx := x + kx - pad
						if sx < 0 || sx >= in.w {
							continue
						}
						for ic := 0; ic < l.InChannels; ic++ {
							w := l.Weights[((ky*k+kx)*l.InChannels+ic)*l.OutChannels+oc]
							sum += in.at(sy, sx, ic) * w
						}
					}
				}
				out.data[base+oc] = sum
			}
		}
	}
	return out, nil
}

func (l *LayerSpec) dense(in *tensor) (*tensor, error) {
	if len(in.data) != l.InputDim {
		return nil, fmt.Errorf("expected %d inputs, got %d", l.InputDim, len(in.data))
	}

	out := newTensor(1, 1, l.OutputDim)
	for o := 0; o < l.OutputDim; o++ {
		sum := l.Bias[o]
		for i := 0; i < l.InputDim; i++ {
			sum += in.data[i] * l.Weights[i*l.OutputDim+o]
		}
		out.data[o] = sum
	}
	return out, nil
}

// maxPool 2x2 最大池化，步长 2
func maxPool(in *tensor) *tensor {
	oh, ow := in.h/2, in.w/2
	out := newTensor(oh, ow, in.c)

	for y := 0; y < oh; y++ {
		for x := 0; x < ow; x++ {
			for ch := 0; ch < in.c; ch++ {
				v := in.at(2*y, 2*x, ch)
				if n := in.at(2*y, 2*x+1, ch); n > v {
					v = n
				}
				if n := in.at(2*y+1, 2*x, ch); n > v {
					v = n
				}
				if n := in.at(2*y+1, 2*x+1, ch); n > v {
					v = n
				}
				out.data[(y*ow+x)*in.c+ch] = v
			}
		}
	}
	return out
}

func applyActivation(name string, data []float64) {
	switch name {
	case activationReLU:
		for i, v := range data {
			if v < 0 {
				data[i] = 0
			}
		}
	case activationSoftmax:
		softmax(data)
	}
}

// softmax 数值稳定版本：先减去最大值再取指数
func softmax(data []float64) {
	if len(data) == 0 {
		return
	}
	max := data[0]
	for _, v := range data[1:] {
		if v > max {
			max = v
		}
	}
	var sum float64
	for i, v := range data {
		data[i] = math.Exp(v - max)
		sum += data[i]
	}
	for i := range data {
		data[i] /= sum
	}
}
