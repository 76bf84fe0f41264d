//go:build windows

package webgpu

// denseWorkgroup is the edge of the 2-D workgroup used by denseShader.
const denseWorkgroup = 16

// denseShader computes one bias-free dense layer:
// result[row, col] = act(sum_k x[row, k] * w[col, k]).
// x is [batch, in], w is [out, in] (PyTorch layout), result is [batch, out].
// relu != 0 applies max(0, .) to the output.
const denseShader = `
@group(0) @binding(0) var<storage, read> x: array<f32>;
@group(0) @binding(1) var<storage, read> w: array<f32>;
@group(0) @binding(2) var<storage, read_write> result: array<f32>;

struct Params {
    batch: u32,
    in_dim: u32,
    out_dim: u32,
    relu: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(16, 16)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let row = global_id.y;
    let col = global_id.x;

    if (row >= params.batch || col >= params.out_dim) {
        return;
    }

    var sum: f32 = 0.0;
    for (var k: u32 = 0u; k < params.in_dim; k = k + 1u) {
        sum = sum + x[row * params.in_dim + k] * w[col * params.in_dim + k];
    }

    if (params.relu != 0u) {
        sum = max(sum, 0.0);
    }
    result[row * params.out_dim + col] = sum;
}
`
