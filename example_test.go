// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package strpipe_test

import (
	"fmt"
	"os"
	"strings"

	"code.hybscloud.com/strpipe"
)

// ExampleBuilder_Build demonstrates assembling and running a two-stage
// pipeline over an input stream.
func ExampleBuilder_Build() {
	p, err := strpipe.New(4).
		Output(os.Stdout).
		Build("uppercase", "reverse")
	if err != nil {
		fmt.Println(err)
		return
	}

	input := strings.NewReader("gopher\n<END>\n")
	if err := p.Run(input); err != nil {
		fmt.Println(err)
	}

	// Output:
	// [reverse] REHPOG
}

// ExamplePipeline_PlaceWork drives a pipeline by hand instead of feeding a
// stream: start, place items, place the sentinel, wait and close.
func ExamplePipeline_PlaceWork() {
	p, err := strpipe.New(2).
		Output(os.Stdout).
		Build("letter-space")
	if err != nil {
		fmt.Println(err)
		return
	}

	p.Start()
	p.PlaceWork("abc")
	p.PlaceWork(strpipe.EndMarker)
	p.Wait()
	p.Close()

	// Output:
	// [letter-space] a b c
}

// ExampleBoundedQueue demonstrates the blocking queue's drain-on-finish
// protocol: remaining items survive MarkFinished, then Take reports
// shutdown.
func ExampleBoundedQueue() {
	q, _ := strpipe.NewBoundedQueue(8)
	q.Insert("first")
	q.Insert("second")
	q.MarkFinished()

	for {
		item, err := q.Take()
		if strpipe.IsShutdown(err) {
			fmt.Println("done")
			break
		}
		fmt.Println(item)
	}

	// Output:
	// first
	// second
	// done
}

// ExampleReverse shows the byte-reversal transform and its involution law.
func ExampleReverse() {
	fmt.Println(strpipe.Reverse("stressed"))
	fmt.Println(strpipe.Reverse(strpipe.Reverse("stressed")))

	// Output:
	// desserts
	// stressed
}
