package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// registerUI serves the single-page dashboard shell. The page is the
// UI collaborator: it emits the upload/url/selection events and renders
// whatever Update the API hands back.
func registerUI(e *echo.Echo) {
	e.GET("/", func(c echo.Context) error {
		return c.HTML(http.StatusOK, dashboardPage)
	})
}

const dashboardPage = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8" />
  <title>Interactive Data Visualizer</title>
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <style>
    body { font-family: sans-serif; margin: 0; padding: 0 0 40px; }
    h1 { text-align: center; }
    .panel { width: 50%; margin: auto; padding: 20px; border: 1px solid #ddd; border-radius: 5px; }
    .dropzone { width: 100%; height: 60px; line-height: 60px; border: 1px dashed #999;
                border-radius: 5px; text-align: center; margin: 10px 0; cursor: pointer; }
    .urlrow input[type=text] { width: 79%; }
    .urlrow button { width: 19%; float: right; }
    #status { margin-top: 10px; }
    #viz { display: none; text-align: center; margin-top: 20px; }
    .control { width: 30%; display: inline-block; padding: 10px; text-align: left; }
    .control select { width: 100%; }
    #graph { max-width: 100%; margin-top: 10px; }
  </style>
</head>
<body>
  <h1>Interactive Data Visualizer</h1>

  <div class="panel">
    <h3>Step 1: Load your data</h3>
    <div class="dropzone" onclick="document.getElementById('file').click()">
      Drag and drop or <a href="#">select a file</a>
    </div>
    <input type="file" id="file" style="display:none" />
    <div class="urlrow">
      <input type="text" id="url" placeholder="Or paste a link to a CSV here..." />
      <button onclick="loadURL()">Load Link</button>
    </div>
    <div id="status"></div>
  </div>

  <div id="viz">
    <h3>Step 2: Explore the visualization</h3>
    <div class="control"><label>X Axis:</label><select id="x" onchange="changed('x')"></select></div>
    <div class="control"><label>Y Axis:</label><select id="y" onchange="changed('y')"></select></div>
    <div class="control"><label>Chart Type:</label>
      <select id="chart_type" onchange="changed('chart_type')">
        <option value="scatter" selected>Scatter</option>
        <option value="line">Line</option>
        <option value="bar">Bar</option>
        <option value="histogram">Histogram</option>
        <option value="pie">Pie</option>
      </select>
    </div>
    <img id="graph" alt="" />
  </div>

  <script>
    async function post(path, body) {
      const resp = await fetch(path, {
        method: 'POST',
        headers: { 'Content-Type': 'application/json' },
        body: JSON.stringify(body),
        credentials: 'same-origin'
      });
      return resp.json();
    }

    function apply(update) {
      const status = document.getElementById('status');
      status.textContent = update.status || '';
      status.style.color = update.status_color || 'black';
      document.getElementById('viz').style.display = update.visible ? 'block' : 'none';
      for (const axis of ['x', 'y']) {
        const sel = document.getElementById(axis);
        sel.innerHTML = '';
        for (const col of update.columns || []) {
          const opt = document.createElement('option');
          opt.value = col; opt.textContent = col;
          sel.appendChild(opt);
        }
        sel.value = update[axis] || '';
      }
      if (update.chart_type) document.getElementById('chart_type').value = update.chart_type;
      refreshGraph();
    }

    function refreshGraph() {
      document.getElementById('graph').src = '/api/chart.png?t=' + Date.now();
    }

    document.getElementById('file').addEventListener('change', async (ev) => {
      const file = ev.target.files[0];
      if (!file) return;
      const reader = new FileReader();
      reader.onload = async () => {
        apply(await post('/api/upload', { filename: file.name, content_base64: reader.result }));
      };
      reader.readAsDataURL(file);
    });

    async function loadURL() {
      const url = document.getElementById('url').value;
      if (!url) return;
      apply(await post('/api/url', { url: url }));
    }

    async function changed(control) {
      const body = {};
      body[control] = document.getElementById(control).value;
      apply(await post('/api/selection', body));
    }
  </script>
</body>
</html>`
