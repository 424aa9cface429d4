package googlenet

import (
	"fmt"

	"github.com/born-ml/convnets/internal/nn"
	"github.com/born-ml/convnets/internal/tensor"
)

// Inception channel tables for stages b3, b4 and b5.
var (
	b3Units = []InceptionConfig{
		{C1: 64, C2: [2]int{96, 128}, C3: [2]int{16, 32}, C4: 32},
		{C1: 128, C2: [2]int{128, 192}, C3: [2]int{32, 96}, C4: 64},
	}
	b4Units = []InceptionConfig{
		{C1: 192, C2: [2]int{96, 208}, C3: [2]int{16, 48}, C4: 64},
		{C1: 160, C2: [2]int{112, 224}, C3: [2]int{24, 64}, C4: 64},
		{C1: 128, C2: [2]int{128, 256}, C3: [2]int{24, 64}, C4: 64},
		{C1: 112, C2: [2]int{144, 288}, C3: [2]int{32, 64}, C4: 64},
		{C1: 256, C2: [2]int{160, 320}, C3: [2]int{32, 128}, C4: 128},
	}
	b5Units = []InceptionConfig{
		{C1: 256, C2: [2]int{160, 320}, C3: [2]int{32, 128}, C4: 128},
		{C1: 384, C2: [2]int{192, 384}, C3: [2]int{48, 128}, C4: 128},
	}
)

// downsample is the 3x3 stride 2 max pool that closes b1, b3 and b4.
var downsample = nn.MaxPool(3, 2, 1)

// B1 builds the stem: 7x7/2 conv to 64 channels, ReLU, 3x3/2 max pool.
// A 96x96 input leaves it at 24x24.
func B1[B tensor.Backend](in tensor.Shape, backend B) (*nn.Sequential[B], tensor.Shape, error) {
	return nn.Build([]nn.LayerDesc{
		nn.Conv(64, 7, 2, 3), nn.ReLULayer,
		downsample,
	}, in, backend)
}

// B2 builds three 1x1 convolutions to 64 channels, each followed by ReLU.
func B2[B tensor.Backend](in tensor.Shape, backend B) (*nn.Sequential[B], tensor.Shape, error) {
	return nn.Build([]nn.LayerDesc{
		nn.Conv(64, 1, 1, 0), nn.ReLULayer,
		nn.Conv(64, 1, 1, 0), nn.ReLULayer,
		nn.Conv(64, 1, 1, 0), nn.ReLULayer,
	}, in, backend)
}

// B3 builds two Inception blocks (256 then 480 channels) and a downsample.
func B3[B tensor.Backend](in tensor.Shape, backend B) (*nn.Sequential[B], tensor.Shape, error) {
	return inceptionStage(in, b3Units, []nn.LayerDesc{downsample}, backend)
}

// B4 builds five Inception blocks ending at 832 channels and a downsample.
func B4[B tensor.Backend](in tensor.Shape, backend B) (*nn.Sequential[B], tensor.Shape, error) {
	return inceptionStage(in, b4Units, []nn.LayerDesc{downsample}, backend)
}

// B5 builds two Inception blocks ending at 1024 channels, then global
// average pooling and flattening to [N, 1024].
func B5[B tensor.Backend](in tensor.Shape, backend B) (*nn.Sequential[B], tensor.Shape, error) {
	return inceptionStage(in, b5Units, []nn.LayerDesc{nn.GlobalAvgPool(), nn.FlattenLayer}, backend)
}

// inceptionStage chains one Inception block per config, sizing each from
// the channels the previous one produces, then appends the tail layers.
func inceptionStage[B tensor.Backend](
	in tensor.Shape,
	units []InceptionConfig,
	tail []nn.LayerDesc,
	backend B,
) (*nn.Sequential[B], tensor.Shape, error) {
	if len(in) != 4 {
		return nil, nil, fmt.Errorf("inception stage: expected 4D input, got shape %v: %w", in, tensor.ErrShapeMismatch)
	}

	stage := nn.NewSequential[B]()
	shape := in
	for i, cfg := range units {
		block := NewInception(shape[1], cfg, backend)
		next, err := block.OutputShape(shape)
		if err != nil {
			return nil, nil, fmt.Errorf("block %d: %w", i, err)
		}
		stage.Add(block)
		shape = next
	}

	rest, out, err := nn.Build(tail, shape, backend)
	if err != nil {
		return nil, nil, err
	}
	for _, c := range rest.Children() {
		stage.Add(c.Module)
	}
	return stage, out, nil
}
