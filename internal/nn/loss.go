package nn

import (
	"fmt"
	"math"

	"github.com/born-ml/convnets/internal/tensor"
)

// CrossEntropyLoss computes cross-entropy loss for multi-class classification.
//
// The loss is the mean over the batch of -log_softmax(logits)[target],
// evaluated with the log-sum-exp trick so large logits do not overflow.
// It is forward-only; gradients are left to the training loop.
//
// Usage:
//
//	criterion := nn.NewCrossEntropyLoss()
//	logits := model.Forward(input)                 // [batch_size, num_classes]
//	loss := nn.CrossEntropy(criterion, logits, targets) // targets: class indices
type CrossEntropyLoss struct{}

// NewCrossEntropyLoss creates a new cross-entropy loss function.
func NewCrossEntropyLoss() *CrossEntropyLoss {
	return &CrossEntropyLoss{}
}

// Forward computes the mean cross-entropy of rows of logits against class indices.
//
// logits is a row-major [batch_size, num_classes] buffer.
// Panics if a target is out of range or the sizes disagree.
func (c *CrossEntropyLoss) Forward(logits []float32, numClasses int, targets []int) float64 {
	batch := checkClassification("cross_entropy", len(logits), numClasses, targets)

	var total float64
	for b := 0; b < batch; b++ {
		row := logits[b*numClasses : (b+1)*numClasses]
		total += logSumExp(row) - float64(row[targets[b]])
	}
	return total / float64(batch)
}

// CrossEntropy evaluates criterion on a [batch_size, num_classes] logits tensor.
func CrossEntropy[B tensor.Backend](criterion *CrossEntropyLoss, logits *tensor.Tensor[float32, B], targets []int) float64 {
	shape := logits.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("cross_entropy: logits must be 2D [batch_size, num_classes], got %v", shape))
	}
	return criterion.Forward(logits.Data(), shape[1], targets)
}

// Accuracy returns the fraction of rows whose argmax equals the target.
func Accuracy[B tensor.Backend](logits *tensor.Tensor[float32, B], targets []int) float64 {
	shape := logits.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("accuracy: logits must be 2D [batch_size, num_classes], got %v", shape))
	}
	numClasses := shape[1]
	data := logits.Data()
	batch := checkClassification("accuracy", len(data), numClasses, targets)

	correct := 0
	for b := 0; b < batch; b++ {
		if argmax(data[b*numClasses:(b+1)*numClasses]) == targets[b] {
			correct++
		}
	}
	return float64(correct) / float64(batch)
}

// checkClassification validates sizes and targets and returns the batch size.
func checkClassification(op string, n, numClasses int, targets []int) int {
	if numClasses <= 0 || n%numClasses != 0 {
		panic(fmt.Sprintf("%s: %d logits do not form rows of %d classes", op, n, numClasses))
	}
	batch := n / numClasses
	if batch == 0 || batch != len(targets) {
		panic(fmt.Sprintf("%s: batch size %d != %d targets", op, batch, len(targets)))
	}
	for i, t := range targets {
		if t < 0 || t >= numClasses {
			panic(fmt.Sprintf("%s: target[%d]=%d out of range [0, %d)", op, i, t, numClasses))
		}
	}
	return batch
}

func logSumExp(row []float32) float64 {
	m := math.Inf(-1)
	for _, v := range row {
		m = math.Max(m, float64(v))
	}
	var sum float64
	for _, v := range row {
		sum += math.Exp(float64(v) - m)
	}
	return m + math.Log(sum)
}

// argmax returns the first index of the largest value.
func argmax(row []float32) int {
	best := 0
	for i, v := range row {
		if v > row[best] {
			best = i
		}
	}
	return best
}
