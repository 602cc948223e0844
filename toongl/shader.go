// Package toongl implements the GPU variant of the cartoonify webcam
// demo: the webcam frame is uploaded as a texture every tick and the
// posterization plus the Sobel outline are evaluated per fragment.
package toongl

// vertexShader positions a full-screen quad. The u_scale uniform
// shrinks one axis of the drawable plane so the source aspect ratio is
// preserved inside a differently shaped surface. The texture coordinate
// is flipped vertically since the video frame is delivered top-down.
const vertexShader = `
attribute vec2 a_position;
uniform vec2 u_scale;
varying vec2 v_uv;

void main() {
	v_uv = vec2(a_position.x * 0.5 + 0.5, 0.5 - a_position.y * 0.5);
	gl_Position = vec4(a_position * u_scale, 0.0, 1.0);
}
`

// fragmentShader applies the cartoon effect in normalized color space:
// 4 quantization levels, 3x3 Sobel over the luminance sampled at one
// texel offsets and a 0.4 gradient threshold. The border pixels sample
// outside the frame and rely on the CLAMP_TO_EDGE texture wrapping.
const fragmentShader = `
precision mediump float;

uniform sampler2D u_frame;
uniform vec2 u_texel;
varying vec2 v_uv;

const float levels = 4.0;
const float threshold = 0.4;

float luma(vec3 color) {
	return dot(color, vec3(0.299, 0.587, 0.114));
}

void main() {
	float tl = luma(texture2D(u_frame, v_uv + vec2(-u_texel.x, -u_texel.y)).rgb);
	float tc = luma(texture2D(u_frame, v_uv + vec2(0.0, -u_texel.y)).rgb);
	float tr = luma(texture2D(u_frame, v_uv + vec2(u_texel.x, -u_texel.y)).rgb);
	float ml = luma(texture2D(u_frame, v_uv + vec2(-u_texel.x, 0.0)).rgb);
	float mr = luma(texture2D(u_frame, v_uv + vec2(u_texel.x, 0.0)).rgb);
	float bl = luma(texture2D(u_frame, v_uv + vec2(-u_texel.x, u_texel.y)).rgb);
	float bc = luma(texture2D(u_frame, v_uv + vec2(0.0, u_texel.y)).rgb);
	float br = luma(texture2D(u_frame, v_uv + vec2(u_texel.x, u_texel.y)).rgb);

	float gx = -tl - 2.0 * ml - bl + tr + 2.0 * mr + br;
	float gy = -tl - 2.0 * tc - tr + bl + 2.0 * bc + br;
	float mag = sqrt(gx * gx + gy * gy);

	vec3 posterized = floor(texture2D(u_frame, v_uv).rgb * levels) / levels;
	vec3 color = mag > threshold ? vec3(0.0) : posterized;

	gl_FragColor = vec4(color, 1.0);
}
`

// Letterbox returns the horizontal and vertical scale of the drawable
// plane so the video aspect ratio is preserved without stretching: the
// wider party gets shrunk, the other axis stays at 1. It has to be
// recomputed whenever the video or the surface dimensions change.
func Letterbox(videoWidth, videoHeight, surfaceWidth, surfaceHeight int) (float64, float64) {
	videoAspect := float64(videoWidth) / float64(videoHeight)
	surfaceAspect := float64(surfaceWidth) / float64(surfaceHeight)

	if surfaceAspect > videoAspect {
		return videoAspect / surfaceAspect, 1.0
	}
	return 1.0, surfaceAspect / videoAspect
}
