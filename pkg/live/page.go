package live

// pageShell is the host page the app is bootstrapped into. The script keeps
// the browser copy in sync with the server's live structure and forwards
// change and click events addressed by element path.
const pageShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>inplace</title>
</head>
<body>
<div id="main"></div>
<script>
(function () {
  var main = document.getElementById("main");
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "/ws");

  function pathOf(el) {
    var root = main.firstElementChild, path = [];
    for (; el && el !== root; el = el.parentElement) {
      if (!el.parentElement) return null;
      path.unshift(Array.prototype.indexOf.call(el.parentElement.children, el));
    }
    return el === root ? path : null;
  }

  function render(markup) {
    var values = {};
    main.querySelectorAll("input[name]").forEach(function (i) { values[i.name] = i.value; });
    main.innerHTML = markup;
    main.querySelectorAll("input[name]").forEach(function (i) {
      if (values[i.name] !== undefined) i.value = values[i.name];
    });
  }

  function send(type, el) {
    var path = pathOf(el);
    if (path === null) return;
    var ev = {path: path, type: type};
    if (el.type !== "button") ev.value = el.value;
    ws.send(JSON.stringify(ev));
  }

  ws.onmessage = function (e) {
    var msg = JSON.parse(e.data);
    if (msg.type === "error") { console.warn(msg.error); return; }
    if (msg.html) render(msg.html);
  };
  main.addEventListener("change", function (e) { send("change", e.target); });
  main.addEventListener("click", function (e) {
    if (e.target.type === "button") send("click", e.target);
  });
})();
</script>
</body>
</html>`
